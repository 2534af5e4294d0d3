package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/models"
)

type sendRepository struct {
	*DB
	logger *logger.Logger
}

func NewSendRepository(db *DB, logger *logger.Logger) SendRepository {
	return &sendRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *sendRepository) GetByServerID(ctx context.Context, vaultID int64, serverSendID string) (models.Send, error) {
	send, err := scanSend(r.QueryRowContext(ctx, getSendByServerID, vaultID, serverSendID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Send{}, ErrSendNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sendRepository.GetByServerID").
			Int64("vault_id", vaultID).
			Str("send_id", serverSendID).
			Msg("failed to scan send row")
		return models.Send{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return send, nil
}

func (r *sendRepository) ListByVault(ctx context.Context, vaultID int64) ([]models.Send, error) {
	log := logger.FromContext(ctx)

	rows, err := r.QueryContext(ctx, listSendsByVault, vaultID)
	if err != nil {
		log.Err(err).Str("func", "sendRepository.ListByVault").Int64("vault_id", vaultID).Msg("failed to query sends")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var sends []models.Send
	for rows.Next() {
		send, scanErr := scanSend(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		sends = append(sends, send)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return sends, nil
}

func (r *sendRepository) Upsert(ctx context.Context, send models.Send) error {
	var maxAccess sql.NullInt64
	if send.MaxAccessCount != nil {
		maxAccess = sql.NullInt64{Int64: int64(*send.MaxAccessCount), Valid: true}
	}

	_, err := r.execWithRetry(ctx, upsertSend,
		send.VaultID,
		send.ServerSendID,
		send.AccessID,
		send.KeyBase64,
		int(send.Type),
		send.Name,
		send.Notes,
		send.Text,
		send.TextHidden,
		send.FileName,
		send.FileSize,
		send.AccessCount,
		maxAccess,
		send.HasPassword,
		send.Disabled,
		send.HideEmail,
		send.RevisionDate,
		nullString(send.ExpirationDate),
		send.DeletionDate,
		send.ShareURL,
		time.Now().UTC(),
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sendRepository.Upsert").
			Int64("vault_id", send.VaultID).
			Str("send_id", send.ServerSendID).
			Msg("failed to upsert send")
		return fmt.Errorf("%w: upsert send: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *sendRepository) DeleteNotIn(ctx context.Context, vaultID int64, keep []string) (int64, error) {
	query, args, err := deleteScopedNotIn("sends", "server_send_id", vaultID, keep)
	if err != nil {
		return 0, err
	}

	res, err := r.execWithRetry(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sendRepository.DeleteNotIn").
			Int64("vault_id", vaultID).
			Msg("failed to delete stale sends")
		return 0, fmt.Errorf("%w: delete stale sends: %w", ErrExecutingStatement, err)
	}

	return res.RowsAffected()
}

func scanSend(s rowScanner) (models.Send, error) {
	var (
		send       models.Send
		sendType   int
		maxAccess  sql.NullInt64
		expiration sql.NullString
	)

	if err := s.Scan(
		&send.ID,
		&send.VaultID,
		&send.ServerSendID,
		&send.AccessID,
		&send.KeyBase64,
		&sendType,
		&send.Name,
		&send.Notes,
		&send.Text,
		&send.TextHidden,
		&send.FileName,
		&send.FileSize,
		&send.AccessCount,
		&maxAccess,
		&send.HasPassword,
		&send.Disabled,
		&send.HideEmail,
		&send.RevisionDate,
		&expiration,
		&send.DeletionDate,
		&send.ShareURL,
		&send.UpdatedAt,
	); err != nil {
		return models.Send{}, err
	}

	send.Type = models.SendType(sendType)
	if maxAccess.Valid {
		n := int(maxAccess.Int64)
		send.MaxAccessCount = &n
	}
	send.ExpirationDate = stringPtr(expiration)

	return send, nil
}
