// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/adapter"
	"github.com/MKhiriev/go-warden-sync/internal/config"
	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/store"
	"github.com/MKhiriev/go-warden-sync/internal/utils"
	"github.com/MKhiriev/go-warden-sync/models"
)

const defaultDataLossThreshold = 0.5

// SyncResult is either [SyncCompleted] or [EmptyVaultBlocked].
type SyncResult interface {
	syncResult()
}

// SyncStats counts what a full sync did.
type SyncStats struct {
	Added     int
	Updated   int
	Conflicts int
	Skipped   int
	Errors    int

	FoldersUpserted int
	FoldersDeleted  int64
	EntriesDeleted  int64
	SendsUpserted   int
	SendsDeleted    int64
	SendErrors      int
}

// SyncCompleted is a finished sync. Warning is set when the server lost a
// large share of the local ciphers.
type SyncCompleted struct {
	Stats   SyncStats
	Warning string
}

// EmptyVaultBlocked is returned instead of wiping a populated local vault
// because the server answered with no ciphers. Nothing was written.
type EmptyVaultBlocked struct {
	LocalCount  int
	ServerCount int
	Reason      string
}

func (SyncCompleted) syncResult()     {}
func (EmptyVaultBlocked) syncResult() {}

type syncOptions struct {
	emptyVaultConfirmed bool
}

// SyncOption tunes a single FullSync call.
type SyncOption func(*syncOptions)

// WithEmptyVaultConfirmed lets a sync proceed when the server snapshot is
// empty but the local vault is not.
func WithEmptyVaultConfirmed() SyncOption {
	return func(o *syncOptions) { o.emptyVaultConfirmed = true }
}

type syncOrchestrator struct {
	adapters adapter.Factory
	vaults   store.VaultRepository
	entries  store.EntryRepository
	folders  store.FolderRepository
	sends    store.SendRepository
	router   CipherRouter
	locks    *VaultLocks
	uuids    *utils.UUIDGenerator

	dataLossThreshold float64
	logger            *logger.Logger
	now               func() time.Time
}

// SyncDeps groups the collaborators of [NewSyncOrchestrator].
type SyncDeps struct {
	Adapters adapter.Factory
	Vaults   store.VaultRepository
	Entries  store.EntryRepository
	Folders  store.FolderRepository
	Sends    store.SendRepository
	Router   CipherRouter
	Locks    *VaultLocks
}

func NewSyncOrchestrator(deps SyncDeps, cfg config.ClientSync, log *logger.Logger) SyncOrchestrator {
	threshold := cfg.DataLossThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = defaultDataLossThreshold
	}

	return &syncOrchestrator{
		adapters:          deps.Adapters,
		vaults:            deps.Vaults,
		entries:           deps.Entries,
		folders:           deps.Folders,
		sends:             deps.Sends,
		router:            deps.Router,
		locks:             deps.Locks,
		uuids:             utils.NewUUIDGenerator(),
		dataLossThreshold: threshold,
		logger:            log,
		now:               time.Now,
	}
}

func (s *syncOrchestrator) FullSync(ctx context.Context, vault models.Vault, accessToken string, key *crypto.SymmetricKey, opts ...SyncOption) (SyncResult, error) {
	if key == nil || key.Closed() {
		return nil, ErrVaultKeyUnavailable
	}

	var o syncOptions
	for _, opt := range opts {
		opt(&o)
	}

	release, err := s.locks.Acquire(ctx, vault.ID)
	if err != nil {
		return nil, fmt.Errorf("acquire vault lock: %w", err)
	}
	defer release()

	runID := s.uuids.Generate()
	ctx = utils.WithRunID(ctx, runID)
	log := s.logger.With().Str("run_id", runID).Int64("vault_id", vault.ID).Logger()
	ctx = log.WithContext(ctx)

	snapshot, err := s.adapters.Vault(vault.ServerURLs, accessToken).Sync(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch sync snapshot: %w", err)
	}

	active := snapshot.ActiveCiphers()
	localCount, err := s.entries.CountLinked(ctx, vault.ID)
	if err != nil {
		return nil, fmt.Errorf("count local entries: %w", err)
	}

	if blocked, ok := s.guard(vault, localCount, len(active), o); ok {
		log.Warn().Str("func", "syncOrchestrator.FullSync").
			Int("local_count", localCount).
			Msg("server vault is empty, sync blocked until confirmed")
		return blocked, nil
	}
	warning := s.dataLossWarning(localCount, len(active))

	var stats SyncStats
	if err = s.syncFolders(ctx, vault, snapshot.Folders, key, &stats); err != nil {
		return nil, err
	}

	activeIDs := make([]string, 0, len(active))
	for _, c := range active {
		activeIDs = append(activeIDs, c.ID)
		res := s.router.Route(ctx, vault, c, key)
		stats.add(res)
		if res.Outcome == RouteError {
			log.Warn().Str("func", "syncOrchestrator.FullSync").Str("cipher_id", c.ID).Str("reason", res.Reason).Msg("cipher not applied")
		}
	}

	stats.EntriesDeleted, err = s.entries.DeleteLinkedNotIn(ctx, vault.ID, activeIDs)
	if err != nil {
		return nil, fmt.Errorf("delete removed entries: %w", err)
	}

	if err = s.syncSends(ctx, vault, snapshot.Sends, key, &stats); err != nil {
		return nil, err
	}

	if err = s.vaults.UpdateSyncStatus(ctx, vault.ID, s.now(), snapshot.Profile.SecurityStamp); err != nil {
		return nil, fmt.Errorf("update sync status: %w", err)
	}

	log.Info().Str("func", "syncOrchestrator.FullSync").
		Int("added", stats.Added).
		Int("updated", stats.Updated).
		Int("conflicts", stats.Conflicts).
		Int("skipped", stats.Skipped).
		Int("errors", stats.Errors).
		Int64("deleted", stats.EntriesDeleted).
		Msg("full sync finished")

	return SyncCompleted{Stats: stats, Warning: warning}, nil
}

func (s *syncOrchestrator) guard(vault models.Vault, local, server int, o syncOptions) (EmptyVaultBlocked, bool) {
	if server != 0 || local == 0 || vault.IsFirstSync() || o.emptyVaultConfirmed {
		return EmptyVaultBlocked{}, false
	}
	return EmptyVaultBlocked{
		LocalCount:  local,
		ServerCount: server,
		Reason:      fmt.Sprintf("server returned no ciphers while %d entries are linked locally", local),
	}, true
}

func (s *syncOrchestrator) dataLossWarning(local, server int) string {
	if local == 0 || server == 0 || server >= local {
		return ""
	}
	if float64(local-server)/float64(local) <= s.dataLossThreshold {
		return ""
	}
	return fmt.Sprintf("server has %d ciphers, %d are linked locally", server, local)
}

func (s *syncOrchestrator) syncFolders(ctx context.Context, vault models.Vault, folders []models.FolderResponse, key *crypto.SymmetricKey, stats *SyncStats) error {
	keep := make([]string, 0, len(folders))
	for _, f := range folders {
		keep = append(keep, f.ID)
		name := decryptSoft(f.Name, key)

		existing, err := s.folders.GetByServerID(ctx, vault.ID, f.ID)
		switch {
		case errors.Is(err, store.ErrFolderNotFound):
			existing = models.Folder{VaultID: vault.ID, ServerFolderID: f.ID}
		case err != nil:
			return fmt.Errorf("load folder: %w", err)
		case existing.Name == name && existing.RevisionDate == f.RevisionDate:
			continue
		}

		existing.Name = name
		existing.RevisionDate = f.RevisionDate
		if err = s.folders.Upsert(ctx, existing); err != nil {
			return fmt.Errorf("upsert folder: %w", err)
		}
		stats.FoldersUpserted++
	}

	var err error
	stats.FoldersDeleted, err = s.folders.DeleteNotIn(ctx, vault.ID, keep)
	if err != nil {
		return fmt.Errorf("delete removed folders: %w", err)
	}
	return nil
}

func (s *syncOrchestrator) syncSends(ctx context.Context, vault models.Vault, sends []models.SendResponse, key *crypto.SymmetricKey, stats *SyncStats) error {
	log := logger.FromContext(ctx)

	keep := make([]string, 0, len(sends))
	for _, resp := range sends {
		keep = append(keep, resp.ID)

		existing, err := s.sends.GetByServerID(ctx, vault.ID, resp.ID)
		if err != nil && !errors.Is(err, store.ErrSendNotFound) {
			return fmt.Errorf("load send: %w", err)
		}
		if err == nil && sendUnchanged(existing, resp) {
			continue
		}

		send, err := decryptSend(vault, resp, key, s.now())
		if err != nil {
			log.Warn().Err(err).Str("func", "syncOrchestrator.syncSends").Str("send_id", resp.ID).Msg("send not decrypted")
			stats.SendErrors++
			continue
		}
		if err = s.sends.Upsert(ctx, send); err != nil {
			return fmt.Errorf("upsert send: %w", err)
		}
		stats.SendsUpserted++
	}

	var err error
	stats.SendsDeleted, err = s.sends.DeleteNotIn(ctx, vault.ID, keep)
	if err != nil {
		return fmt.Errorf("delete removed sends: %w", err)
	}
	return nil
}

func (st *SyncStats) add(res RouteResult) {
	switch res.Outcome {
	case RouteAdded:
		st.Added++
	case RouteUpdated:
		st.Updated++
	case RouteConflict:
		st.Conflicts++
	case RouteSkipped:
		st.Skipped++
	case RouteError:
		st.Errors++
	}
}
