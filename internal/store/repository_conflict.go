package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/models"
)

type conflictRepository struct {
	*DB
	logger *logger.Logger
}

func NewConflictRepository(db *DB, logger *logger.Logger) ConflictRepository {
	return &conflictRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *conflictRepository) Insert(ctx context.Context, backup models.ConflictBackup) (int64, error) {
	if backup.CreatedAt.IsZero() {
		backup.CreatedAt = time.Now().UTC()
	}

	res, err := r.execWithRetry(ctx, insertConflictBackup,
		backup.VaultID,
		backup.EntryID,
		backup.CipherID,
		string(backup.Type),
		backup.LocalDataJSON,
		backup.ServerDataJSON,
		backup.LocalRevisionDate,
		backup.ServerRevisionDate,
		backup.EntryTitle,
		backup.Description,
		backup.CreatedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "conflictRepository.Insert").
			Int64("vault_id", backup.VaultID).
			Int64("entry_id", backup.EntryID).
			Str("cipher_id", backup.CipherID).
			Msg("failed to insert conflict backup")
		return 0, fmt.Errorf("%w: insert conflict backup: %w", ErrExecutingStatement, err)
	}

	return res.LastInsertId()
}

func (r *conflictRepository) ListByVault(ctx context.Context, vaultID int64) ([]models.ConflictBackup, error) {
	log := logger.FromContext(ctx)

	rows, err := r.QueryContext(ctx, listConflictBackups, vaultID)
	if err != nil {
		log.Err(err).Str("func", "conflictRepository.ListByVault").Int64("vault_id", vaultID).Msg("failed to query conflict backups")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var backups []models.ConflictBackup
	for rows.Next() {
		var (
			b            models.ConflictBackup
			conflictType string
		)
		if err := rows.Scan(
			&b.ID,
			&b.VaultID,
			&b.EntryID,
			&b.CipherID,
			&conflictType,
			&b.LocalDataJSON,
			&b.ServerDataJSON,
			&b.LocalRevisionDate,
			&b.ServerRevisionDate,
			&b.EntryTitle,
			&b.Description,
			&b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		b.Type = models.ConflictType(conflictType)
		backups = append(backups, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return backups, nil
}
