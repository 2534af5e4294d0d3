// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/MKhiriev/go-warden-sync/models"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const masterKeySize = 32

// NormalizeEmail trims and lowercases an email for use as the KDF salt.
// The server identifies the account by the email as typed, so only key
// derivation uses the normalized form.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}

// DeriveMasterKey turns the master password into the 32-byte master key.
//
// PBKDF2-SHA256 uses the normalized email as salt. Argon2id uses the
// SHA-256 of the normalized email as salt and kdf.Memory in MiB. Identical
// inputs always produce identical bytes.
func DeriveMasterKey(password, email string, kdf models.KdfParams) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	salt := []byte(NormalizeEmail(email))
	p := kdf.WithDefaults()

	switch p.Type {
	case models.KdfPBKDF2:
		return pbkdf2.Key([]byte(password), salt, p.Iterations, masterKeySize, sha256.New), nil
	case models.KdfArgon2id:
		if p.Parallelism > 255 || p.Memory > 1024*1024 {
			return nil, fmt.Errorf("%w: memory=%d parallelism=%d", ErrInvalidKdfParams, p.Memory, p.Parallelism)
		}
		saltHash := sha256.Sum256(salt)
		return argon2.IDKey(
			[]byte(password),
			saltHash[:],
			uint32(p.Iterations),
			uint32(p.Memory*1024),
			uint8(p.Parallelism),
			masterKeySize,
		), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedKdf, p.Type)
	}
}

// DeriveMasterPasswordHash computes the server authentication secret:
// one round of PBKDF2-SHA256 keyed by the master key and salted with the
// password, in standard base64. It never equals the master key.
func DeriveMasterPasswordHash(masterKey []byte, password string) string {
	hash := pbkdf2.Key(masterKey, []byte(password), 1, masterKeySize, sha256.New)
	defer clear(hash)
	return base64.StdEncoding.EncodeToString(hash)
}

// StretchMasterKey expands the master key with HKDF-Expand(SHA-256) into
// an encryption sub-key ("enc") and a MAC sub-key ("mac").
func StretchMasterKey(masterKey []byte) (*SymmetricKey, error) {
	if len(masterKey) != masterKeySize {
		return nil, fmt.Errorf("%w: master key is %d bytes", ErrInvalidKeyLength, len(masterKey))
	}

	enc := make([]byte, subKeySize)
	mac := make([]byte, subKeySize)
	defer clear(enc)
	defer clear(mac)

	if _, err := io.ReadFull(hkdf.Expand(sha256.New, masterKey, []byte("enc")), enc); err != nil {
		return nil, fmt.Errorf("expand enc key: %w", err)
	}
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, masterKey, []byte("mac")), mac); err != nil {
		return nil, fmt.Errorf("expand mac key: %w", err)
	}

	return NewSymmetricKey(enc, mac)
}
