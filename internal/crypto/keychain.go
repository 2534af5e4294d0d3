// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrSealedTooShort is returned when a sealed blob is shorter than the nonce.
var ErrSealedTooShort = errors.New("sealed value too short")

const dekSize = 32

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct{}

// NewKeyChainService constructs a [KeyChainService] backed by AES-256-GCM.
func NewKeyChainService() KeyChainService {
	return &keyChainService{}
}

// GenerateDEK implements [KeyChainService]. It reads 32 random bytes from
// the OS CSPRNG.
func (k *keyChainService) GenerateDEK() ([]byte, error) {
	dek := make([]byte, dekSize)
	if _, err := io.ReadFull(rand.Reader, dek); err != nil {
		return nil, err
	}
	return dek, nil
}

// EncryptData implements [KeyChainService]. The output is standard base64
// of nonce (12 bytes) ‖ ciphertext.
func (k *keyChainService) EncryptData(data any, DEK []byte) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal data: %w", err)
	}

	blob, err := seal(plaintext, DEK)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptData implements [KeyChainService]. target must be a non-nil
// pointer, identical to the requirement of [encoding/json.Unmarshal].
func (k *keyChainService) DecryptData(encryptedB64 string, DEK []byte, target any) error {
	blob, err := base64.StdEncoding.DecodeString(encryptedB64)
	if err != nil {
		return fmt.Errorf("decode base64: %w", err)
	}

	plaintext, err := open(blob, DEK)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(plaintext, target); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	return nil
}

// SealString implements [KeyChainService].
func (k *keyChainService) SealString(plain string, DEK []byte) (string, error) {
	if plain == "" {
		return "", nil
	}
	blob, err := seal([]byte(plain), DEK)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// OpenString implements [KeyChainService].
func (k *keyChainService) OpenString(sealed string, DEK []byte) (string, error) {
	if sealed == "" {
		return "", nil
	}
	blob, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	plaintext, err := open(blob, DEK)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func newGCM(DEK []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DEK)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// seal returns nonce || ciphertext.
func seal(plaintext, DEK []byte) ([]byte, error) {
	gcm, err := newGCM(DEK)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func open(blob, DEK []byte) ([]byte, error) {
	gcm, err := newGCM(DEK)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, ErrSealedTooShort
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	// A failure here means a different device key or a corrupted row.
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt data: %w", err)
	}
	return plaintext, nil
}

// Sealer binds a [KeyChainService] to one device key. It protects the
// secret column of local entries.
type Sealer struct {
	kc  KeyChainService
	dek []byte
}

// NewSealer copies dek and returns a Sealer using kc.
func NewSealer(kc KeyChainService, dek []byte) *Sealer {
	return &Sealer{kc: kc, dek: append([]byte(nil), dek...)}
}

// Seal encrypts a secret for local storage.
func (s *Sealer) Seal(plain string) (string, error) {
	return s.kc.SealString(plain, s.dek)
}

// Open decrypts a secret produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	return s.kc.OpenString(sealed, s.dek)
}
