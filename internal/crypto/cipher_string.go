package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// EncType is the leading integer of a cipher string.
type EncType int

const (
	// EncAesCbc256B64 is AES-256-CBC without authentication.
	EncAesCbc256B64 EncType = 0
	// EncAesCbc256HmacSha256B64 is AES-256-CBC with HMAC-SHA256 over iv||data.
	EncAesCbc256HmacSha256B64 EncType = 2
)

// MaxCipherStringSize bounds the whole value and every base64 part.
const MaxCipherStringSize = 1 << 20

// CipherString is a parsed "<type>.<iv>|<data>[|<mac>]" value.
type CipherString struct {
	Type EncType
	IV   []byte
	Data []byte
	Mac  []byte
}

// ParseCipherString validates the grammar and decodes the base64 parts.
// A value without a type prefix is treated as type 0.
func ParseCipherString(s string) (*CipherString, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidCipherString)
	}
	if len(s) > MaxCipherStringSize {
		return nil, ErrCipherStringTooLarge
	}

	encType := EncAesCbc256B64
	body := s
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		t, err := strconv.Atoi(s[:dot])
		if err != nil {
			return nil, fmt.Errorf("%w: bad type prefix", ErrInvalidCipherString)
		}
		encType = EncType(t)
		body = s[dot+1:]
	}

	parts := strings.Split(body, "|")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: empty part", ErrInvalidCipherString)
		}
	}

	var want int
	switch encType {
	case EncAesCbc256B64:
		want = 2
	case EncAesCbc256HmacSha256B64:
		want = 3
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedEncType, encType)
	}
	if len(parts) < want {
		return nil, fmt.Errorf("%w: type %d needs %d parts, got %d", ErrInvalidCipherString, encType, want, len(parts))
	}

	cs := &CipherString{Type: encType}
	var err error
	if cs.IV, err = decodeB64(parts[0]); err != nil {
		return nil, err
	}
	if len(cs.IV) != aes.BlockSize {
		return nil, fmt.Errorf("%w: iv is %d bytes", ErrInvalidCipherString, len(cs.IV))
	}
	if cs.Data, err = decodeB64(parts[1]); err != nil {
		return nil, err
	}
	if len(cs.Data) == 0 || len(cs.Data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: data is not block aligned", ErrInvalidCipherString)
	}
	if encType == EncAesCbc256HmacSha256B64 {
		if cs.Mac, err = decodeB64(parts[2]); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

// String renders the cipher string in its wire form.
func (c *CipherString) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(c.Type)))
	b.WriteByte('.')
	b.WriteString(base64.StdEncoding.EncodeToString(c.IV))
	b.WriteByte('|')
	b.WriteString(base64.StdEncoding.EncodeToString(c.Data))
	if c.Type == EncAesCbc256HmacSha256B64 {
		b.WriteByte('|')
		b.WriteString(base64.StdEncoding.EncodeToString(c.Mac))
	}
	return b.String()
}

// decodeB64 accepts standard and URL-safe alphabets with or without padding.
func decodeB64(part string) ([]byte, error) {
	if len(part) > MaxCipherStringSize {
		return nil, ErrCipherStringTooLarge
	}
	normalized := strings.NewReplacer("-", "+", "_", "/").Replace(part)
	if rem := len(normalized) % 4; rem != 0 {
		normalized += strings.Repeat("=", 4-rem)
	}
	out, err := base64.StdEncoding.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCipherString, err)
	}
	return out, nil
}

// Encrypt produces a type 2 cipher string with a fresh random IV.
func Encrypt(plaintext []byte, key *SymmetricKey) (string, error) {
	var out string
	err := key.use(func(enc, mac []byte) error {
		if len(mac) == 0 {
			return ErrMissingMacKey
		}

		block, err := aes.NewCipher(enc)
		if err != nil {
			return fmt.Errorf("aes: %w", err)
		}

		iv := make([]byte, aes.BlockSize)
		if _, err = rand.Read(iv); err != nil {
			return fmt.Errorf("generate iv: %w", err)
		}

		padded := pkcs7Pad(plaintext, aes.BlockSize)
		data := make([]byte, len(padded))
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(data, padded)

		cs := &CipherString{
			Type: EncAesCbc256HmacSha256B64,
			IV:   iv,
			Data: data,
			Mac:  computeMac(mac, iv, data),
		}
		out = cs.String()
		return nil
	})
	return out, err
}

// EncryptString is Encrypt for UTF-8 text.
func EncryptString(plaintext string, key *SymmetricKey) (string, error) {
	return Encrypt([]byte(plaintext), key)
}

// Decrypt parses s and returns the plaintext bytes. For type 2 the MAC is
// checked in constant time before any decryption.
func Decrypt(s string, key *SymmetricKey) ([]byte, error) {
	cs, err := ParseCipherString(s)
	if err != nil {
		return nil, err
	}

	var out []byte
	err = key.use(func(enc, mac []byte) error {
		if cs.Type == EncAesCbc256HmacSha256B64 {
			if len(mac) == 0 {
				return ErrMissingMacKey
			}
			if !hmac.Equal(cs.Mac, computeMac(mac, cs.IV, cs.Data)) {
				return ErrMacMismatch
			}
		}

		block, err := aes.NewCipher(enc)
		if err != nil {
			return fmt.Errorf("aes: %w", err)
		}

		plain := make([]byte, len(cs.Data))
		cipher.NewCBCDecrypter(block, cs.IV).CryptBlocks(plain, cs.Data)

		out, err = pkcs7Unpad(plain, aes.BlockSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DecryptToString is Decrypt for UTF-8 text.
func DecryptToString(s string, key *SymmetricKey) (string, error) {
	b, err := Decrypt(s, key)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecryptSymmetricKey decrypts a protected key (the account vault key or a
// cipher item key). The plaintext must be exactly 64 bytes.
func DecryptSymmetricKey(s string, key *SymmetricKey) (*SymmetricKey, error) {
	raw, err := Decrypt(s, key)
	if err != nil {
		return nil, err
	}
	defer clear(raw)
	return SymmetricKeyFromBytes(raw)
}

// IsCipherString reports whether s parses as a cipher string.
func IsCipherString(s string) bool {
	_, err := ParseCipherString(s)
	return err == nil
}

// EncryptIfNeeded encrypts plaintext and leaves values that already are
// cipher strings untouched. Blank values stay blank.
func EncryptIfNeeded(value string, key *SymmetricKey) (string, error) {
	if value == "" || IsCipherString(value) {
		return value, nil
	}
	return EncryptString(value, key)
}

// DecryptOrPlain decrypts value when possible. A value that looks encrypted
// but cannot be decrypted yields "", anything else is returned as is.
func DecryptOrPlain(value string, key *SymmetricKey) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	if plain, err := DecryptToString(value, key); err == nil {
		return plain
	}
	if looksLikeCipherString(value) {
		return ""
	}
	return value
}

// looksLikeCipherString is a cheap shape check: digits followed by a dot.
func looksLikeCipherString(value string) bool {
	dot := strings.IndexByte(value, '.')
	if dot <= 0 {
		return false
	}
	for _, r := range value[:dot] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func computeMac(macKey, iv, data []byte) []byte {
	h := hmac.New(sha256.New, macKey)
	h.Write(iv)
	h.Write(data)
	return h.Sum(nil)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(bytes.Clone(b), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, ErrInvalidPadding
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, ErrInvalidPadding
		}
	}
	return b[:len(b)-n], nil
}
