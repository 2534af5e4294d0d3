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

type folderRepository struct {
	*DB
	logger *logger.Logger
}

func NewFolderRepository(db *DB, logger *logger.Logger) FolderRepository {
	return &folderRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *folderRepository) GetByServerID(ctx context.Context, vaultID int64, serverFolderID string) (models.Folder, error) {
	folder, err := scanFolder(r.QueryRowContext(ctx, getFolderByServerID, vaultID, serverFolderID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Folder{}, ErrFolderNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "folderRepository.GetByServerID").
			Int64("vault_id", vaultID).
			Str("folder_id", serverFolderID).
			Msg("failed to scan folder row")
		return models.Folder{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return folder, nil
}

func (r *folderRepository) ListByVault(ctx context.Context, vaultID int64) ([]models.Folder, error) {
	log := logger.FromContext(ctx)

	rows, err := r.QueryContext(ctx, listFoldersByVault, vaultID)
	if err != nil {
		log.Err(err).Str("func", "folderRepository.ListByVault").Int64("vault_id", vaultID).Msg("failed to query folders")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, scanErr := scanFolder(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return folders, nil
}

func (r *folderRepository) Upsert(ctx context.Context, folder models.Folder) error {
	_, err := r.execWithRetry(ctx, upsertFolder,
		folder.VaultID,
		folder.ServerFolderID,
		folder.Name,
		folder.RevisionDate,
		nullInt64(folder.CategoryID),
		time.Now().UTC(),
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "folderRepository.Upsert").
			Int64("vault_id", folder.VaultID).
			Str("folder_id", folder.ServerFolderID).
			Msg("failed to upsert folder")
		return fmt.Errorf("%w: upsert folder: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *folderRepository) DeleteNotIn(ctx context.Context, vaultID int64, keep []string) (int64, error) {
	query, args, err := deleteScopedNotIn("folders", "server_folder_id", vaultID, keep)
	if err != nil {
		return 0, err
	}

	res, err := r.execWithRetry(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "folderRepository.DeleteNotIn").
			Int64("vault_id", vaultID).
			Msg("failed to delete stale folders")
		return 0, fmt.Errorf("%w: delete stale folders: %w", ErrExecutingStatement, err)
	}

	return res.RowsAffected()
}

func scanFolder(s rowScanner) (models.Folder, error) {
	var (
		f          models.Folder
		categoryID sql.NullInt64
	)

	if err := s.Scan(
		&f.ID,
		&f.VaultID,
		&f.ServerFolderID,
		&f.Name,
		&f.RevisionDate,
		&categoryID,
		&f.UpdatedAt,
	); err != nil {
		return models.Folder{}, err
	}
	f.CategoryID = int64Ptr(categoryID)

	return f, nil
}
