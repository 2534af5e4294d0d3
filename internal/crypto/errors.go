package crypto

import "errors"

// Sentinel errors returned by the cipher string and key helpers. Callers
// decide per field whether a failure is soft or hard.
var (
	// ErrInvalidCipherString is returned when a value does not follow the
	// "<type>.<iv>|<data>[|<mac>]" grammar or one of its parts is not base64.
	ErrInvalidCipherString = errors.New("invalid cipher string")

	// ErrCipherStringTooLarge is returned for values over the 1 MiB limit.
	ErrCipherStringTooLarge = errors.New("cipher string too large")

	// ErrUnsupportedEncType is returned for encryption types other than
	// AES-CBC-256 (0) and AES-CBC-256 + HMAC-SHA256 (2).
	ErrUnsupportedEncType = errors.New("unsupported encryption type")

	// ErrMacMismatch is returned when the HMAC of a type 2 cipher string does
	// not match. Decryption is not attempted in that case.
	ErrMacMismatch = errors.New("mac verification failed")

	// ErrInvalidPadding is returned when PKCS#7 padding is malformed, which
	// usually means a wrong key.
	ErrInvalidPadding = errors.New("invalid padding")

	// ErrInvalidKeyLength is returned when key material has an unexpected size.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrKeyClosed is returned when a [SymmetricKey] is used after Close.
	ErrKeyClosed = errors.New("symmetric key is closed")

	// ErrMissingMacKey is returned when a MAC is required but the key has none.
	ErrMissingMacKey = errors.New("key has no mac sub-key")

	// ErrUnsupportedKdf is returned for unknown KDF types.
	ErrUnsupportedKdf = errors.New("unsupported kdf type")

	// ErrInvalidKdfParams is returned when KDF parameters are out of range.
	ErrInvalidKdfParams = errors.New("invalid kdf parameters")

	// ErrEmptyPassword is returned when a key is derived from an empty password.
	ErrEmptyPassword = errors.New("empty master password")
)
