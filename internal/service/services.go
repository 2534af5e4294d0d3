package service

import (
	"fmt"

	"github.com/MKhiriev/go-warden-sync/internal/adapter"
	"github.com/MKhiriev/go-warden-sync/internal/config"
	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/store"
)

type Services struct {
	Auth      AuthSessionManager
	Vaults    VaultRegistry
	Router    CipherRouter
	Conflicts ConflictResolver
	Sync      SyncOrchestrator
	Upload    UploadProcessor
	Pending   PendingOperationProcessor
	Sends     SendService
	SyncJob   SyncJob
	Locks     *VaultLocks
}

// NewServices wires the client engine on top of storages and adapters. The
// local sealing key is read from the device state.
func NewServices(storages *store.Storages, adapters adapter.Factory, cfg config.ClientSync, keyChain crypto.KeyChainService, log *logger.Logger) (*Services, error) {
	localKey, err := storages.Device.LocalKey()
	if err != nil {
		return nil, fmt.Errorf("load local sealing key: %w", err)
	}
	sealer := crypto.NewSealer(keyChain, localKey)

	locks := NewVaultLocks()
	auth := NewAuthSessionManager(adapters, storages.Device, log)
	vaults := NewVaultRegistry(storages.Vaults, log)
	conflicts := NewConflictResolver(storages.Conflicts, log)
	router := NewCipherRouter(storages.Entries, storages.Pending, conflicts, sealer, log)
	upload := NewUploadProcessor(adapters, storages.Entries, sealer, locks, log)
	pending := NewPendingOperationProcessor(adapters, storages.Pending, storages.Entries, upload, locks, log)
	orchestrator := NewSyncOrchestrator(SyncDeps{
		Adapters: adapters,
		Vaults:   storages.Vaults,
		Entries:  storages.Entries,
		Folders:  storages.Folders,
		Sends:    storages.Sends,
		Router:   router,
		Locks:    locks,
	}, cfg, log)

	return &Services{
		Auth:      auth,
		Vaults:    vaults,
		Router:    router,
		Conflicts: conflicts,
		Sync:      orchestrator,
		Upload:    upload,
		Pending:   pending,
		Sends:     NewSendService(adapters, storages.Sends, log),
		SyncJob: NewSyncJob(SyncJobDeps{
			Vaults:  vaults,
			Auth:    auth,
			Pending: pending,
			Upload:  upload,
			Sync:    orchestrator,
			Locks:   locks,
		}, cfg.RefreshMargin, log),
		Locks: locks,
	}, nil
}
