package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	sendKeyMaterialSize    = 16
	sendPasswordIterations = 100000
)

var (
	sendKeySalt = []byte("bitwarden-send")
	sendKeyInfo = []byte("send")
)

// GenerateSendKeyMaterial returns 16 random bytes. The material is shared in
// the Send URL fragment and never leaves the client in plain form otherwise.
func GenerateSendKeyMaterial() ([]byte, error) {
	b := make([]byte, sendKeyMaterialSize)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate send key: %w", err)
	}
	return b, nil
}

// DeriveSendKey stretches Send key material into a 64-byte symmetric key
// with HKDF-SHA256.
func DeriveSendKey(material []byte) (*SymmetricKey, error) {
	if len(material) == 0 {
		return nil, fmt.Errorf("%w: empty send key material", ErrInvalidKeyLength)
	}

	raw := make([]byte, fullKeySize)
	defer clear(raw)
	if _, err := io.ReadFull(hkdf.New(sha256.New, material, sendKeySalt, sendKeyInfo), raw); err != nil {
		return nil, fmt.Errorf("derive send key: %w", err)
	}
	return SymmetricKeyFromBytes(raw)
}

// HashSendPassword computes the access password hash the server stores for
// a protected Send.
func HashSendPassword(password string, material []byte) string {
	return base64.StdEncoding.EncodeToString(
		pbkdf2.Key([]byte(password), material, sendPasswordIterations, 32, sha256.New),
	)
}
