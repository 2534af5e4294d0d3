package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-warden-sync/internal/adapter"
	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/store"
	"github.com/MKhiriev/go-warden-sync/models"
)

// PendingStats counts the outcome of one queue drain.
type PendingStats struct {
	Completed int
	Failed    int
}

type pendingProcessor struct {
	adapters adapter.Factory
	pending  store.PendingOperationRepository
	entries  store.EntryRepository
	upload   UploadProcessor
	locks    *VaultLocks
	logger   *logger.Logger
}

func NewPendingOperationProcessor(adapters adapter.Factory, pending store.PendingOperationRepository, entries store.EntryRepository, upload UploadProcessor, locks *VaultLocks, log *logger.Logger) PendingOperationProcessor {
	return &pendingProcessor{
		adapters: adapters,
		pending:  pending,
		entries:  entries,
		upload:   upload,
		locks:    locks,
		logger:   log,
	}
}

func (p *pendingProcessor) Enqueue(ctx context.Context, op models.PendingOperation) (int64, error) {
	switch op.Type {
	case models.OperationCreate, models.OperationUpdate:
		if op.EntryID == nil {
			return 0, ErrMissingEntryID
		}
	case models.OperationDelete, models.OperationRestore:
		if op.CipherID == nil || *op.CipherID == "" {
			return 0, ErrMissingCipherID
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, op.Type)
	}
	op.Status = models.OperationPending
	return p.pending.Enqueue(ctx, op)
}

func (p *pendingProcessor) Process(ctx context.Context, vault models.Vault, accessToken string, key *crypto.SymmetricKey) (PendingStats, error) {
	release, err := p.locks.Acquire(ctx, vault.ID)
	if err != nil {
		return PendingStats{}, fmt.Errorf("acquire vault lock: %w", err)
	}
	defer release()

	ops, err := p.pending.ListRunnable(ctx, vault.ID)
	if err != nil {
		return PendingStats{}, fmt.Errorf("list pending operations: %w", err)
	}
	if len(ops) == 0 {
		return PendingStats{}, nil
	}

	va := p.adapters.Vault(vault.ServerURLs, accessToken)

	var stats PendingStats
	for _, op := range ops {
		if err = ctx.Err(); err != nil {
			return stats, err
		}

		if runErr := p.run(ctx, va, vault, op, key); runErr != nil {
			stats.Failed++
			p.logger.Warn().Err(runErr).
				Str("func", "pendingProcessor.Process").
				Int64("operation_id", op.ID).
				Str("operation", string(op.Type)).
				Int("attempts", op.Attempts+1).
				Msg("pending operation failed")
			if err = p.pending.MarkFailed(ctx, op.ID, runErr.Error()); err != nil {
				return stats, fmt.Errorf("mark operation failed: %w", err)
			}
			continue
		}

		if err = p.pending.MarkCompleted(ctx, op.ID); err != nil {
			return stats, fmt.Errorf("mark operation completed: %w", err)
		}
		stats.Completed++
	}

	p.logger.Info().Str("func", "pendingProcessor.Process").
		Int64("vault_id", vault.ID).
		Int("completed", stats.Completed).
		Int("failed", stats.Failed).
		Msg("pending queue processed")

	return stats, nil
}

func (p *pendingProcessor) run(ctx context.Context, va adapter.VaultAdapter, vault models.Vault, op models.PendingOperation, key *crypto.SymmetricKey) error {
	switch op.Type {
	case models.OperationCreate, models.OperationUpdate:
		if op.EntryID == nil {
			return ErrMissingEntryID
		}
		if key == nil || key.Closed() {
			return ErrVaultKeyUnavailable
		}
		entry, err := p.entries.Get(ctx, *op.EntryID)
		if err != nil {
			return fmt.Errorf("load entry: %w", err)
		}
		_, err = p.upload.Push(ctx, va, vault, entry, key)
		return err

	case models.OperationDelete:
		if op.CipherID == nil || *op.CipherID == "" {
			return ErrMissingCipherID
		}
		if err := va.DeleteCipher(ctx, *op.CipherID); err != nil {
			return fmt.Errorf("delete server cipher: %w", err)
		}
		return p.dropLocal(ctx, vault.ID, *op.CipherID)

	case models.OperationRestore:
		if op.CipherID == nil || *op.CipherID == "" {
			return ErrMissingCipherID
		}
		if err := va.RestoreCipher(ctx, *op.CipherID); err != nil {
			return fmt.Errorf("restore server cipher: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op.Type)
	}
}

// dropLocal removes the local entry of a cipher deleted on the server.
func (p *pendingProcessor) dropLocal(ctx context.Context, vaultID int64, cipherID string) error {
	entry, err := p.entries.GetByCipherID(ctx, vaultID, cipherID)
	if errors.Is(err, store.ErrEntryNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load local entry: %w", err)
	}
	if err = p.entries.Delete(ctx, entry.ID); err != nil && !errors.Is(err, store.ErrEntryNotFound) {
		return fmt.Errorf("delete local entry: %w", err)
	}
	return nil
}

func (p *pendingProcessor) PurgeCompleted(ctx context.Context, vaultID int64) (int64, error) {
	return p.pending.PurgeCompleted(ctx, vaultID)
}
