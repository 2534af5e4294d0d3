package service

import "errors"

var (
	ErrInvalidAuthState = errors.New("operation not allowed in current login state")
	ErrLoginFlowClosed  = errors.New("login flow is closed")
	ErrLoginRejected    = errors.New("login rejected by server")
	ErrTwoFactorInvalid = errors.New("two-factor code rejected")
	ErrVaultKeyDecrypt  = errors.New("cannot decrypt vault key")
	ErrEmptyAccessToken = errors.New("server returned no access token")
	ErrNoRefreshToken   = errors.New("session has no refresh token")
	ErrSessionClosed    = errors.New("session is closed")

	ErrPasswordDecrypt     = errors.New("password field cannot be decrypted")
	ErrUnsupportedKind     = errors.New("unsupported entry kind")
	ErrEntryNotInVault     = errors.New("entry is not assigned to a vault")
	ErrMissingCipherID     = errors.New("operation has no cipher id")
	ErrMissingEntryID      = errors.New("operation has no entry id")
	ErrUnknownOperation    = errors.New("unknown pending operation type")
	ErrPasskeyLegacyMode   = errors.New("passkey is not bitwarden compatible")
	ErrPasskeyInvalidKey   = errors.New("passkey private key is not a PKCS#8 EC or RSA key")
	ErrPasskeyRejected     = errors.New("server stored the cipher without fido2 credentials")
	ErrInvalidSendKey      = errors.New("invalid send key")
	ErrInvalidSendDraft    = errors.New("invalid send draft")
	ErrSyncAlreadyRunning  = errors.New("sync already running for vault")
	ErrVaultKeyUnavailable = errors.New("vault key is not available")
)
