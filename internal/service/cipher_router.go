// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/store"
	"github.com/MKhiriev/go-warden-sync/models"
)

// RouteOutcome is the tally bucket of a routed cipher.
type RouteOutcome int

const (
	RouteAdded RouteOutcome = iota
	RouteUpdated
	RouteConflict
	RouteSkipped
	RouteError
)

func (o RouteOutcome) String() string {
	switch o {
	case RouteAdded:
		return "added"
	case RouteUpdated:
		return "updated"
	case RouteConflict:
		return "conflict"
	case RouteSkipped:
		return "skipped"
	case RouteError:
		return "error"
	default:
		return "unknown"
	}
}

// RouteResult describes what happened to one cipher.
type RouteResult struct {
	Outcome RouteOutcome
	Kind    models.EntryKind
	EntryID int64
	Reason  string
	Err     error
}

func skipped(reason string) RouteResult {
	return RouteResult{Outcome: RouteSkipped, Reason: reason}
}

func failed(err error) RouteResult {
	return RouteResult{Outcome: RouteError, Reason: err.Error(), Err: err}
}

type cipherRouter struct {
	entries   store.EntryRepository
	pending   store.PendingOperationRepository
	conflicts ConflictResolver
	sealer    SecretSealer
	logger    *logger.Logger
	now       func() time.Time
}

func NewCipherRouter(entries store.EntryRepository, pending store.PendingOperationRepository, conflicts ConflictResolver, sealer SecretSealer, log *logger.Logger) CipherRouter {
	return &cipherRouter{
		entries:   entries,
		pending:   pending,
		conflicts: conflicts,
		sealer:    sealer,
		logger:    log,
		now:       time.Now,
	}
}

// decoded is a server cipher turned into the local shape, before it is
// matched against the store.
type decoded struct {
	kind     models.EntryKind
	title    string
	notes    string
	data     any
	password string
	passkey  *models.PasskeyData
}

func (r *cipherRouter) Route(ctx context.Context, vault models.Vault, cipher models.Cipher, key *crypto.SymmetricKey) RouteResult {
	if cipher.IsDeleted() {
		return skipped("cipher is in trash")
	}

	pendingDelete, err := r.pending.HasActiveDelete(ctx, vault.ID, cipher.ID)
	if err != nil {
		return failed(fmt.Errorf("check pending delete: %w", err))
	}
	if pendingDelete {
		return skipped("pending local delete")
	}

	var (
		d      decoded
		reason string
	)
	switch cipher.Type {
	case models.CipherTypeLogin:
		d, reason, err = decodeLogin(cipher, key)
	case models.CipherTypeSecureNote:
		d = decodeSecureNote(cipher, key)
	case models.CipherTypeCard:
		d, reason = decodeCard(cipher, key)
	case models.CipherTypeIdentity:
		d, reason = decodeIdentity(cipher, key)
	default:
		return skipped(fmt.Sprintf("unknown cipher type %d", cipher.Type))
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("func", "cipherRouter.Route").Str("cipher_id", cipher.ID).Msg("cipher rejected")
		return failed(err)
	}
	if reason != "" {
		return skipped(reason)
	}

	res := r.apply(ctx, vault, cipher, d)
	res.Kind = d.kind
	return res
}

func (r *cipherRouter) apply(ctx context.Context, vault models.Vault, cipher models.Cipher, d decoded) RouteResult {
	existing, err := r.entries.GetByCipherID(ctx, vault.ID, cipher.ID)
	if errors.Is(err, store.ErrEntryNotFound) {
		if d.kind == models.EntryKindPasskey {
			// the private key never leaves the device that created it
			return skipped("passkey not stored locally")
		}
		return r.insert(ctx, vault, cipher, d)
	}
	if err != nil {
		return failed(fmt.Errorf("load local entry: %w", err))
	}

	if reason := kindChangeBlocked(existing.Kind, d.kind); reason != "" {
		r.logger.Warn().Str("func", "cipherRouter.apply").
			Str("cipher_id", cipher.ID).
			Int64("entry_id", existing.ID).
			Str("local_kind", string(existing.Kind)).
			Str("server_kind", string(d.kind)).
			Msg(reason)
		return RouteResult{Outcome: RouteSkipped, EntryID: existing.ID, Reason: reason}
	}

	if existing.Link.LocalModified {
		if existing.Link.RevisionDate != cipher.RevisionDate {
			if _, err = r.conflicts.Record(ctx, vault, existing, cipher); err != nil {
				return failed(err)
			}
			return RouteResult{Outcome: RouteConflict, EntryID: existing.ID}
		}
		return RouteResult{Outcome: RouteSkipped, EntryID: existing.ID, Reason: "local changes pending upload"}
	}

	if existing.Link.RevisionDate == cipher.RevisionDate && existing.Link.FolderID == cipher.Folder() {
		return RouteResult{Outcome: RouteSkipped, EntryID: existing.ID, Reason: "unchanged"}
	}

	updated, err := r.build(existing, vault, cipher, d)
	if err != nil {
		return failed(err)
	}
	if err = r.entries.Update(ctx, updated); err != nil {
		return failed(fmt.Errorf("update entry: %w", err))
	}
	return RouteResult{Outcome: RouteUpdated, EntryID: existing.ID}
}

func (r *cipherRouter) insert(ctx context.Context, vault models.Vault, cipher models.Cipher, d decoded) RouteResult {
	entry, err := r.build(models.Entry{CreatedAt: r.now()}, vault, cipher, d)
	if err != nil {
		return failed(err)
	}

	id, err := r.entries.Insert(ctx, entry)
	if err != nil {
		return failed(fmt.Errorf("insert entry: %w", err))
	}
	return RouteResult{Outcome: RouteAdded, EntryID: id}
}

// build overwrites base with the server values of d and links it to cipher.
func (r *cipherRouter) build(base models.Entry, vault models.Vault, cipher models.Cipher, d decoded) (models.Entry, error) {
	entry := base
	entry.Kind = d.kind
	entry.Title = d.title
	entry.Notes = d.notes
	entry.Favorite = cipher.Favorite
	entry.UpdatedAt = r.now()

	vaultID, cipherID := vault.ID, cipher.ID
	entry.Link = models.BitwardenLink{
		VaultID:      &vaultID,
		CipherID:     &cipherID,
		FolderID:     cipher.Folder(),
		RevisionDate: cipher.RevisionDate,
		SyncStatus:   models.SyncStatusSynced,
	}

	payload := d.data
	switch d.kind {
	case models.EntryKindPassword:
		sealed, err := r.sealer.Seal(d.password)
		if err != nil {
			return models.Entry{}, fmt.Errorf("seal password: %w", err)
		}
		entry.Secret = sealed
	case models.EntryKindPasskey:
		merged, status := refreshPasskey(base, *d.passkey)
		payload = merged
		entry.Link.SyncStatus = status
	default:
		entry.Secret = ""
	}

	data, err := models.EncodeEntryData(payload)
	if err != nil {
		return models.Entry{}, err
	}
	entry.Data = data
	return entry, nil
}

// kindChangeBlocked reports why a linked entry of kind local must not be
// rebuilt as kind remote. The private key of a local passkey exists only on
// this device, and a pull never turns another entry into a passkey.
func kindChangeBlocked(local, remote models.EntryKind) string {
	switch {
	case local == remote:
		return ""
	case remote == models.EntryKindPasskey:
		return "server cipher became a passkey, local entry kept"
	case local == models.EntryKindPasskey:
		return "server cipher no longer carries a passkey, local passkey kept"
	}
	return ""
}

// refreshPasskey updates the metadata of a local passkey from the server.
// Key material and the local mode are kept.
func refreshPasskey(local models.Entry, remote models.PasskeyData) (models.PasskeyData, models.SyncStatus) {
	current, err := models.DecodeEntryData[models.PasskeyData](local)
	if err != nil {
		current = models.PasskeyData{}
	}

	current.RpID = orDefault(remote.RpID, current.RpID)
	current.RpName = orDefault(remote.RpName, current.RpName)
	current.UserName = orDefault(remote.UserName, current.UserName)
	current.UserDisplayName = orDefault(remote.UserDisplayName, current.UserDisplayName)
	current.UserHandle = orDefault(remote.UserHandle, current.UserHandle)
	if current.CredentialID == "" {
		current.CredentialID = remote.CredentialID
	}
	current.Counter = max(current.Counter, remote.Counter)

	if local.Secret == "" {
		return current, models.SyncStatusReference
	}
	return current, models.SyncStatusSynced
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// decryptSoft decrypts a non-critical field. Failures become "".
func decryptSoft(value string, key *crypto.SymmetricKey) string {
	if value == "" {
		return ""
	}
	plain, err := crypto.DecryptToString(value, key)
	if err != nil {
		return ""
	}
	return plain
}
