package crypto

// KeyChainService отвечает за локальное шифрование данных на устройстве.
// Он не знает ничего о сети, Bitwarden или базе данных.
// Его единственная задача — генерировать ключ устройства и защищать им секреты.
//
// Схема работы:
//
//	DEK    = GenerateDEK()                 (один раз, хранится в device state)
//	Blob   = EncryptData(entryData, DEK)   (JSON → AES-GCM → base64)
//	Sealed = SealString(password, DEK)     (пароли и приватные ключи записей)
type KeyChainService interface {
	// GenerateDEK генерирует случайный ключ устройства (32 байта / 256 бит).
	// DEK шифрует локальные секреты и никогда не покидает устройство.
	GenerateDEK() ([]byte, error)

	// EncryptData serializes the given value to JSON and encrypts it with the DEK.
	// Returns a base64-encoded blob (nonce || ciphertext).
	EncryptData(data any, DEK []byte) (string, error)

	// DecryptData decrypts a base64-encoded blob with the DEK and unmarshals
	// the result into the target pointer (same as json.Unmarshal).
	DecryptData(encryptedB64 string, DEK []byte, target any) error

	// SealString шифрует строку ключом устройства. Пустая строка остаётся пустой.
	SealString(plain string, DEK []byte) (string, error)

	// OpenString расшифровывает значение, полученное от SealString.
	OpenString(sealed string, DEK []byte) (string, error)
}
