package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/models"
)

type pendingOperationRepository struct {
	*DB
	logger *logger.Logger
}

func NewPendingOperationRepository(db *DB, logger *logger.Logger) PendingOperationRepository {
	return &pendingOperationRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *pendingOperationRepository) Enqueue(ctx context.Context, op models.PendingOperation) (int64, error) {
	now := time.Now().UTC()
	status := op.Status
	if status == "" {
		status = models.OperationPending
	}

	res, err := r.execWithRetry(ctx, insertPendingOperation,
		op.VaultID,
		string(op.Type),
		nullInt64(op.EntryID),
		nullString(op.CipherID),
		string(status),
		now,
		now,
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pendingOperationRepository.Enqueue").
			Int64("vault_id", op.VaultID).
			Str("operation", string(op.Type)).
			Msg("failed to enqueue pending operation")
		return 0, fmt.Errorf("%w: enqueue operation: %w", ErrExecutingStatement, err)
	}

	return res.LastInsertId()
}

func (r *pendingOperationRepository) ListRunnable(ctx context.Context, vaultID int64) ([]models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	query, args, err := builder.
		Select(pendingColumns).
		From("pending_operations").
		Where(sq.Eq{
			"vault_id": vaultID,
			"status":   []string{string(models.OperationPending), string(models.OperationFailed)},
		}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.ListRunnable").
			Int64("vault_id", vaultID).
			Msg("failed to query pending operations")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var ops []models.PendingOperation
	for rows.Next() {
		var (
			op       models.PendingOperation
			opType   string
			status   string
			entryID  sql.NullInt64
			cipherID sql.NullString
		)
		if err := rows.Scan(
			&op.ID,
			&op.VaultID,
			&opType,
			&entryID,
			&cipherID,
			&status,
			&op.Attempts,
			&op.LastError,
			&op.CreatedAt,
			&op.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		op.Type = models.OperationType(opType)
		op.Status = models.OperationStatus(status)
		op.EntryID = int64Ptr(entryID)
		op.CipherID = stringPtr(cipherID)
		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ops, nil
}

func (r *pendingOperationRepository) MarkCompleted(ctx context.Context, id int64) error {
	res, err := r.execWithRetry(ctx, markPendingCompleted, time.Now().UTC(), id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pendingOperationRepository.MarkCompleted").
			Int64("operation_id", id).
			Msg("failed to mark operation completed")
		return fmt.Errorf("%w: mark completed: %w", ErrExecutingStatement, err)
	}

	return requireAffected(res, ErrPendingOperationNotFound)
}

func (r *pendingOperationRepository) MarkFailed(ctx context.Context, id int64, lastError string) error {
	res, err := r.execWithRetry(ctx, markPendingFailed, lastError, time.Now().UTC(), id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pendingOperationRepository.MarkFailed").
			Int64("operation_id", id).
			Msg("failed to mark operation failed")
		return fmt.Errorf("%w: mark failed: %w", ErrExecutingStatement, err)
	}

	return requireAffected(res, ErrPendingOperationNotFound)
}

func (r *pendingOperationRepository) HasActiveDelete(ctx context.Context, vaultID int64, cipherID string) (bool, error) {
	var exists bool
	if err := r.QueryRowContext(ctx, hasActiveDelete, vaultID, cipherID).Scan(&exists); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pendingOperationRepository.HasActiveDelete").
			Int64("vault_id", vaultID).
			Str("cipher_id", cipherID).
			Msg("failed to check pending delete")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return exists, nil
}

func (r *pendingOperationRepository) PurgeCompleted(ctx context.Context, vaultID int64) (int64, error) {
	res, err := r.execWithRetry(ctx, purgeCompletedOperations, vaultID)
	if err != nil {
		return 0, fmt.Errorf("%w: purge completed: %w", ErrExecutingStatement, err)
	}
	return res.RowsAffected()
}
