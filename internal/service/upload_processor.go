package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/adapter"
	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/store"
	"github.com/MKhiriev/go-warden-sync/models"
)

// UploadStats counts the outcome of one upload pass.
type UploadStats struct {
	Created int
	Updated int
	Failed  int
}

type uploadProcessor struct {
	adapters adapter.Factory
	entries  store.EntryRepository
	sealer   SecretSealer
	locks    *VaultLocks
	logger   *logger.Logger
	now      func() time.Time
}

func NewUploadProcessor(adapters adapter.Factory, entries store.EntryRepository, sealer SecretSealer, locks *VaultLocks, log *logger.Logger) UploadProcessor {
	return &uploadProcessor{
		adapters: adapters,
		entries:  entries,
		sealer:   sealer,
		locks:    locks,
		logger:   log,
		now:      time.Now,
	}
}

func (u *uploadProcessor) UploadPending(ctx context.Context, vault models.Vault, accessToken string, key *crypto.SymmetricKey) (UploadStats, error) {
	if key == nil || key.Closed() {
		return UploadStats{}, ErrVaultKeyUnavailable
	}

	release, err := u.locks.Acquire(ctx, vault.ID)
	if err != nil {
		return UploadStats{}, fmt.Errorf("acquire vault lock: %w", err)
	}
	defer release()

	pending, err := u.entries.ListPendingUpload(ctx, vault.ID)
	if err != nil {
		return UploadStats{}, fmt.Errorf("list pending uploads: %w", err)
	}
	if len(pending) == 0 {
		return UploadStats{}, nil
	}

	va := u.adapters.Vault(vault.ServerURLs, accessToken)

	var stats UploadStats
	for _, entry := range pending {
		if err = ctx.Err(); err != nil {
			return stats, err
		}

		wasLinked := entry.Link.Linked()
		if _, err = u.Push(ctx, va, vault, entry, key); err != nil {
			stats.Failed++
			u.logger.Warn().Err(err).
				Str("func", "uploadProcessor.UploadPending").
				Int64("entry_id", entry.ID).
				Str("kind", string(entry.Kind)).
				Msg("entry upload failed")
			if markErr := u.markFailed(ctx, entry); markErr != nil {
				return stats, markErr
			}
			continue
		}

		if wasLinked {
			stats.Updated++
		} else {
			stats.Created++
		}
	}

	u.logger.Info().Str("func", "uploadProcessor.UploadPending").
		Int64("vault_id", vault.ID).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("failed", stats.Failed).
		Msg("upload pass finished")

	return stats, nil
}

func (u *uploadProcessor) Push(ctx context.Context, va adapter.VaultAdapter, vault models.Vault, entry models.Entry, key *crypto.SymmetricKey) (models.Entry, error) {
	if entry.Link.VaultID != nil && *entry.Link.VaultID != vault.ID {
		return entry, ErrEntryNotInVault
	}

	secret := ""
	if entry.Secret != "" {
		plain, err := u.sealer.Open(entry.Secret)
		if err != nil {
			return entry, fmt.Errorf("open local secret: %w", err)
		}
		secret = plain
	}

	req, err := encodeEntry(entry, secret, key)
	if err != nil {
		return entry, err
	}

	var stored models.Cipher
	if entry.Link.Linked() {
		cipherID := *entry.Link.CipherID
		remote, err := va.GetCipher(ctx, cipherID)
		if err != nil {
			return entry, fmt.Errorf("fetch server cipher: %w", err)
		}
		req.Fields = mergeFields(req.Fields, remote.Fields, key)
		if stored, err = va.UpdateCipher(ctx, cipherID, req); err != nil {
			return entry, fmt.Errorf("update server cipher: %w", err)
		}
	} else {
		if stored, err = va.CreateCipher(ctx, req); err != nil {
			return entry, fmt.Errorf("create server cipher: %w", err)
		}
	}

	vaultID, cipherID := vault.ID, stored.ID
	entry.Link.VaultID = &vaultID
	entry.Link.CipherID = &cipherID
	entry.Link.FolderID = stored.Folder()
	entry.UpdatedAt = u.now()

	if entry.Kind == models.EntryKindPasskey && (stored.Login == nil || len(stored.Login.Fido2Credentials) == 0) {
		// keep the cipher id so the next attempt updates instead of duplicating
		entry.Link.LocalModified = true
		entry.Link.SyncStatus = models.SyncStatusFailed
		if err = u.entries.Update(ctx, entry); err != nil {
			return entry, fmt.Errorf("store upload state: %w", err)
		}
		return entry, ErrPasskeyRejected
	}

	entry.Link.RevisionDate = stored.RevisionDate
	entry.Link.LocalModified = false
	entry.Link.SyncStatus = models.SyncStatusSynced
	if err = u.entries.Update(ctx, entry); err != nil {
		return entry, fmt.Errorf("store upload state: %w", err)
	}
	return entry, nil
}

func (u *uploadProcessor) markFailed(ctx context.Context, entry models.Entry) error {
	current, err := u.entries.Get(ctx, entry.ID)
	if errors.Is(err, store.ErrEntryNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reload entry: %w", err)
	}
	if current.Link.SyncStatus == models.SyncStatusFailed {
		return nil
	}
	current.Link.SyncStatus = models.SyncStatusFailed
	current.UpdatedAt = u.now()
	if err = u.entries.Update(ctx, current); err != nil {
		return fmt.Errorf("mark entry failed: %w", err)
	}
	return nil
}
