// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating
// with a Bitwarden-compatible server.
//
// [IdentityAdapter] talks to the identity host (prelogin, token grants) and
// [VaultAdapter] to the API host (sync snapshot, cipher and send CRUD). The
// package ships HTTP/REST implementations built on resty; [Factory] creates
// them for a given set of [models.ServerURLs].
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrNotFound] for 404, [ErrUnauthorized] for 401).
// Failed token grants are returned as [*TokenError].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-warden-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// IdentityAdapter performs unauthenticated calls against the identity host.
type IdentityAdapter interface {
	// PreLogin fetches the account KDF parameters for email.
	PreLogin(ctx context.Context, email string) (models.PreLoginResponse, error)

	// Token sends a password grant. A non-2xx answer is returned as a
	// [*TokenError] carrying the parsed error body, including any two-factor
	// providers or captcha site key the server asked for.
	Token(ctx context.Context, req models.TokenRequest, profile HeaderProfile) (models.TokenResponse, error)

	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (models.RefreshResponse, error)
}

// VaultAdapter performs authenticated calls against the API host.
type VaultAdapter interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter.
	Token() string

	// Sync downloads the full vault snapshot.
	Sync(ctx context.Context) (models.SyncResponse, error)

	// GetCipher fetches a single cipher by server id.
	GetCipher(ctx context.Context, cipherID string) (models.Cipher, error)

	// CreateCipher creates a cipher and returns the stored record.
	CreateCipher(ctx context.Context, cipher models.Cipher) (models.Cipher, error)

	// UpdateCipher replaces a cipher and returns the stored record.
	UpdateCipher(ctx context.Context, cipherID string, cipher models.Cipher) (models.Cipher, error)

	// DeleteCipher moves a cipher to the trash. A cipher that no longer
	// exists counts as deleted.
	DeleteCipher(ctx context.Context, cipherID string) error

	// RestoreCipher takes a cipher out of the trash. A cipher that is
	// missing or not in the trash counts as restored.
	RestoreCipher(ctx context.Context, cipherID string) error

	// CreateSend creates a Send and returns the stored record.
	CreateSend(ctx context.Context, send models.SendRequest) (models.SendResponse, error)
}

// Factory builds adapters bound to one server deployment.
type Factory interface {
	// Identity returns an adapter for urls.Identity.
	Identity(urls models.ServerURLs) IdentityAdapter

	// Vault returns an adapter for urls.API authenticated with accessToken.
	Vault(urls models.ServerURLs, accessToken string) VaultAdapter
}
