// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"fmt"
	"sync"
)

const (
	subKeySize  = 32
	fullKeySize = 2 * subKeySize
)

// SymmetricKey is an in-memory AES-256 encryption key paired with an
// HMAC-SHA256 key. The backing buffer is locked into RAM when the platform
// allows it and zeroed by Close. A closed key rejects every operation.
//
// The owner must call Close when the session that produced the key ends:
//
//	key, err := crypto.StretchMasterKey(masterKey)
//	if err != nil {
//	    return err
//	}
//	defer key.Close()
type SymmetricKey struct {
	mu     sync.RWMutex
	buf    []byte
	macLen int
	locked bool
	closed bool
}

// NewSymmetricKey copies enc and mac into a protected buffer. enc must be
// 32 bytes, mac must be 32 bytes or empty (type 0 keys).
func NewSymmetricKey(enc, mac []byte) (*SymmetricKey, error) {
	if len(enc) != subKeySize {
		return nil, fmt.Errorf("%w: enc key is %d bytes", ErrInvalidKeyLength, len(enc))
	}
	if len(mac) != 0 && len(mac) != subKeySize {
		return nil, fmt.Errorf("%w: mac key is %d bytes", ErrInvalidKeyLength, len(mac))
	}

	buf := make([]byte, len(enc)+len(mac))
	copy(buf, enc)
	copy(buf[len(enc):], mac)

	return &SymmetricKey{
		buf:    buf,
		macLen: len(mac),
		locked: lockMemory(buf),
	}, nil
}

// SymmetricKeyFromBytes splits 64 bytes of key material into the enc and mac
// halves. It is used for the vault key and Send keys.
func SymmetricKeyFromBytes(raw []byte) (*SymmetricKey, error) {
	if len(raw) != fullKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyLength, fullKeySize, len(raw))
	}
	return NewSymmetricKey(raw[:subKeySize], raw[subKeySize:])
}

// Close zeroes the key material and releases the memory lock. It is safe to
// call more than once.
func (k *SymmetricKey) Close() {
	if k == nil {
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return
	}

	clear(k.buf)
	if k.locked {
		unlockMemory(k.buf)
	}
	k.buf = nil
	k.closed = true
}

// Closed reports whether Close has been called.
func (k *SymmetricKey) Closed() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.closed
}

// HasMac reports whether the key carries an HMAC sub-key.
func (k *SymmetricKey) HasMac() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return !k.closed && k.macLen > 0
}

// Bytes returns a copy of enc||mac. The caller owns and must zero the copy.
func (k *SymmetricKey) Bytes() ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.closed {
		return nil, ErrKeyClosed
	}

	out := make([]byte, len(k.buf))
	copy(out, k.buf)
	return out, nil
}

// use runs fn with the enc and mac halves while holding the read lock.
// The slices must not escape fn.
func (k *SymmetricKey) use(fn func(enc, mac []byte) error) error {
	if k == nil {
		return ErrKeyClosed
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.closed {
		return ErrKeyClosed
	}
	return fn(k.buf[:subKeySize], k.buf[subKeySize:])
}
