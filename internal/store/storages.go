package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-warden-sync/internal/config"
	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
)

// Storages groups all client-side repositories into a single value that can
// be passed around the service layer.
type Storages struct {
	Vaults    VaultRepository
	Entries   EntryRepository
	Folders   FolderRepository
	Sends     SendRepository
	Conflicts ConflictRepository
	Pending   PendingOperationRepository
	Device    DeviceState

	db *DB
}

// NewStorages initialises the client storage layer:
//  1. opens the SQLite database at cfg.DB.DSN, creating the file if needed;
//  2. runs pending schema migrations via [DB.Migrate];
//  3. opens the bbolt device state at cfg.DeviceStatePath.
//
// Call Close on shutdown.
func NewStorages(ctx context.Context, cfg config.ClientStorage, keyChain crypto.KeyChainService, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	device, err := OpenDeviceState(cfg.DeviceStatePath, keyChain)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storages{
		Vaults:    NewVaultRepository(db, log),
		Entries:   NewEntryRepository(db, log),
		Folders:   NewFolderRepository(db, log),
		Sends:     NewSendRepository(db, log),
		Conflicts: NewConflictRepository(db, log),
		Pending:   NewPendingOperationRepository(db, log),
		Device:    device,
		db:        db,
	}, nil
}

// Close releases the database and the device state file.
func (s *Storages) Close() error {
	var errs []error
	if s.Device != nil {
		errs = append(errs, s.Device.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
