// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service holds the client engine: the login state machine, the
// cipher router, conflict backups, the full sync, the upload and offline
// queue processors and Send handling. Every component is built from
// adapter and store interfaces and receives key material from the caller.
package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/adapter"
	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/models"
)

// AuthSessionManager starts login flows and refreshes sessions. It keeps no
// key material; a successful flow hands a [*Session] to the caller.
type AuthSessionManager interface {
	// PreLogin asks the identity server for the account KDF parameters and
	// returns a flow in the PreLoginDone state.
	PreLogin(ctx context.Context, urls models.ServerURLs, email string) (*LoginFlow, error)

	// RefreshToken exchanges the session refresh token for a new access
	// token and updates session in place. It is never retried internally.
	RefreshToken(ctx context.Context, session *Session) error
}

// VaultRegistry maps an authenticated account to its local vault profile.
type VaultRegistry interface {
	// Ensure returns the vault for email on urls, creating it on first
	// login and keeping the stored KDF parameters current.
	Ensure(ctx context.Context, email string, urls models.ServerURLs, kdf models.KdfParams) (models.Vault, error)

	// Get loads a vault by local id.
	Get(ctx context.Context, vaultID int64) (models.Vault, error)
}

// CipherRouter decrypts one server cipher and reconciles it with the local
// entry that references it.
type CipherRouter interface {
	// Route never returns an error: failures are reported as a
	// [RouteError] result so one bad record does not abort a sync.
	Route(ctx context.Context, vault models.Vault, cipher models.Cipher, key *crypto.SymmetricKey) RouteResult
}

// ConflictResolver records local-versus-server divergences. The local
// entry is never changed.
type ConflictResolver interface {
	// Record stores one backup made of non-secret local fields and the
	// server cipher id and revision.
	Record(ctx context.Context, vault models.Vault, local models.Entry, server models.Cipher) (models.ConflictBackup, error)
}

// SyncOrchestrator pulls the server snapshot into the local store.
type SyncOrchestrator interface {
	// FullSync downloads the snapshot and applies folders, ciphers, the
	// delete-wins cleanup and sends. A network or parse error aborts before
	// any local write. An empty server snapshot over a populated local vault
	// yields [EmptyVaultBlocked] unless [WithEmptyVaultConfirmed] is passed.
	FullSync(ctx context.Context, vault models.Vault, accessToken string, key *crypto.SymmetricKey, opts ...SyncOption) (SyncResult, error)
}

// UploadProcessor pushes local entries to the server.
type UploadProcessor interface {
	// UploadPending creates server ciphers for unlinked entries and updates
	// the ones modified locally. Per-entry failures are counted and the
	// entry is marked FAILED; only store and context errors are returned.
	UploadPending(ctx context.Context, vault models.Vault, accessToken string, key *crypto.SymmetricKey) (UploadStats, error)

	// Push uploads a single entry through va and returns it with the new
	// link state. It does not take the vault lock.
	Push(ctx context.Context, va adapter.VaultAdapter, vault models.Vault, entry models.Entry, key *crypto.SymmetricKey) (models.Entry, error)
}

// PendingOperationProcessor drains the offline operation queue.
type PendingOperationProcessor interface {
	// Enqueue appends an operation for later processing.
	Enqueue(ctx context.Context, op models.PendingOperation) (int64, error)

	// Process attempts every PENDING or FAILED operation of the vault once,
	// oldest first. It stops early when ctx is cancelled.
	Process(ctx context.Context, vault models.Vault, accessToken string, key *crypto.SymmetricKey) (PendingStats, error)

	// PurgeCompleted removes operations that already succeeded.
	PurgeCompleted(ctx context.Context, vaultID int64) (int64, error)
}

// SendService creates and lists Bitwarden Sends.
type SendService interface {
	// CreateTextSend encrypts draft, uploads it and stores the local copy
	// together with its share URL.
	CreateTextSend(ctx context.Context, vault models.Vault, accessToken string, key *crypto.SymmetricKey, draft models.TextSendDraft) (models.Send, error)

	// List returns the local copies of the vault Sends.
	List(ctx context.Context, vaultID int64) ([]models.Send, error)
}

// SyncJob runs the queue drain, the upload and the full sync on a ticker.
type SyncJob interface {
	// Start launches the background goroutine. It runs every interval,
	// defaulting to 5 minutes if interval is zero or negative. Any
	// previously running job is stopped first.
	Start(ctx context.Context, vaultID int64, session *Session, interval time.Duration)

	// RunOnce performs a single cycle in the calling goroutine.
	RunOnce(ctx context.Context, vaultID int64, session *Session, opts ...SyncOption) (SyncResult, error)

	// Stop cancels the background goroutine and waits for it to exit.
	Stop()
}

// SecretSealer is the local at-rest layer applied to passwords and passkey
// private keys before they reach the store.
type SecretSealer interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}
