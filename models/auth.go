// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strconv"

// TwoFactorProvider identifies a second-factor method accepted by the
// identity server.
type TwoFactorProvider int

const (
	TwoFactorAuthenticator  TwoFactorProvider = 0
	TwoFactorEmail          TwoFactorProvider = 1
	TwoFactorDuo            TwoFactorProvider = 2
	TwoFactorYubiKey        TwoFactorProvider = 3
	TwoFactorU2F            TwoFactorProvider = 4
	TwoFactorRemember       TwoFactorProvider = 5
	TwoFactorWebAuthn       TwoFactorProvider = 7
	TwoFactorEmailNewDevice TwoFactorProvider = -100
)

// String returns the provider name.
func (p TwoFactorProvider) String() string {
	switch p {
	case TwoFactorAuthenticator:
		return "authenticator"
	case TwoFactorEmail:
		return "email"
	case TwoFactorDuo:
		return "duo"
	case TwoFactorYubiKey:
		return "yubikey"
	case TwoFactorU2F:
		return "u2f"
	case TwoFactorRemember:
		return "remember"
	case TwoFactorWebAuthn:
		return "webauthn"
	case TwoFactorEmailNewDevice:
		return "email-new-device"
	default:
		return "provider-" + strconv.Itoa(int(p))
	}
}

// PreLoginRequest is the body of POST /accounts/prelogin.
type PreLoginRequest struct {
	Email string `json:"email"`
}

// PreLoginResponse carries the account KDF parameters.
type PreLoginResponse struct {
	Kdf            KdfType `json:"kdf"`
	KdfIterations  int     `json:"kdfIterations"`
	KdfMemory      *int    `json:"kdfMemory,omitempty"`
	KdfParallelism *int    `json:"kdfParallelism,omitempty"`
}

// Params converts the response into [KdfParams] with defaults applied.
func (r PreLoginResponse) Params() KdfParams {
	p := KdfParams{Type: r.Kdf, Iterations: r.KdfIterations}
	if r.KdfMemory != nil {
		p.Memory = *r.KdfMemory
	}
	if r.KdfParallelism != nil {
		p.Parallelism = *r.KdfParallelism
	}
	return p.WithDefaults()
}

// TokenRequest is a password grant request. Email is sent as typed by the
// user, PasswordHash is the base64 master password hash.
type TokenRequest struct {
	Email             string
	PasswordHash      string
	DeviceID          string
	CaptchaResponse   string
	TwoFactorToken    string
	TwoFactorProvider *TwoFactorProvider
	TwoFactorRemember bool
	NewDeviceOTP      string
}

// TokenResponse is the success body of POST /connect/token.
type TokenResponse struct {
	AccessToken    string   `json:"access_token"`
	RefreshToken   string   `json:"refresh_token"`
	ExpiresIn      int      `json:"expires_in"`
	TokenType      string   `json:"token_type"`
	Key            string   `json:"Key"`
	PrivateKey     string   `json:"PrivateKey,omitempty"`
	Kdf            *KdfType `json:"Kdf,omitempty"`
	KdfIterations  *int     `json:"KdfIterations,omitempty"`
	TwoFactorToken string   `json:"TwoFactorToken,omitempty"`

	// TwoFactorProviders is filled by the adapter from TwoFactorProviders
	// or the keys of TwoFactorProviders2.
	TwoFactorProviders []TwoFactorProvider `json:"-"`
}

// RefreshResponse is the body returned by the refresh_token grant.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}
