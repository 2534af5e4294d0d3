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

type vaultRepository struct {
	*DB
	logger *logger.Logger
}

func NewVaultRepository(db *DB, logger *logger.Logger) VaultRepository {
	return &vaultRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *vaultRepository) Insert(ctx context.Context, vault models.Vault) (models.Vault, error) {
	log := logger.FromContext(ctx)

	if vault.CreatedAt.IsZero() {
		vault.CreatedAt = time.Now().UTC()
	}

	res, err := r.execWithRetry(ctx, insertVault,
		vault.Email,
		vault.ServerURLs.Vault,
		vault.ServerURLs.Identity,
		vault.ServerURLs.API,
		int(vault.Kdf.Type),
		vault.Kdf.Iterations,
		vault.Kdf.Memory,
		vault.Kdf.Parallelism,
		vault.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Vault{}, ErrVaultAlreadyExists
		}
		log.Err(err).
			Str("func", "vaultRepository.Insert").
			Str("server_url", vault.ServerURLs.Vault).
			Msg("failed to insert vault")
		return models.Vault{}, fmt.Errorf("%w: insert vault: %w", ErrExecutingStatement, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Vault{}, fmt.Errorf("%w: vault id: %w", ErrExecutingStatement, err)
	}
	vault.ID = id

	return vault, nil
}

func (r *vaultRepository) Get(ctx context.Context, id int64) (models.Vault, error) {
	return r.getOne(ctx, "vaultRepository.Get", getVaultByID, id)
}

func (r *vaultRepository) GetByEmail(ctx context.Context, email, serverURL string) (models.Vault, error) {
	return r.getOne(ctx, "vaultRepository.GetByEmail", getVaultByEmail, email, serverURL)
}

func (r *vaultRepository) getOne(ctx context.Context, fn, query string, args ...any) (models.Vault, error) {
	log := logger.FromContext(ctx)

	vault, err := scanVault(r.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vault{}, ErrVaultNotFound
	}
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to scan vault row")
		return models.Vault{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return vault, nil
}

func (r *vaultRepository) List(ctx context.Context) ([]models.Vault, error) {
	log := logger.FromContext(ctx)

	rows, err := r.QueryContext(ctx, listVaults)
	if err != nil {
		log.Err(err).Str("func", "vaultRepository.List").Msg("failed to query vaults")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var vaults []models.Vault
	for rows.Next() {
		vault, scanErr := scanVault(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "vaultRepository.List").Msg("failed to scan vault row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		vaults = append(vaults, vault)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return vaults, nil
}

func (r *vaultRepository) UpdateKdf(ctx context.Context, id int64, kdf models.KdfParams) error {
	res, err := r.execWithRetry(ctx, updateVaultKdf, int(kdf.Type), kdf.Iterations, kdf.Memory, kdf.Parallelism, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "vaultRepository.UpdateKdf").
			Int64("vault_id", id).
			Msg("failed to update vault kdf")
		return fmt.Errorf("%w: update vault kdf: %w", ErrExecutingStatement, err)
	}

	return requireAffected(res, ErrVaultNotFound)
}

func (r *vaultRepository) UpdateSyncStatus(ctx context.Context, id int64, syncedAt time.Time, revisionStamp string) error {
	res, err := r.execWithRetry(ctx, updateVaultSyncStatus, syncedAt.UTC(), revisionStamp, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "vaultRepository.UpdateSyncStatus").
			Int64("vault_id", id).
			Msg("failed to update vault sync status")
		return fmt.Errorf("%w: update vault sync status: %w", ErrExecutingStatement, err)
	}

	return requireAffected(res, ErrVaultNotFound)
}

func scanVault(s rowScanner) (models.Vault, error) {
	var (
		v          models.Vault
		kdfType    int
		lastSyncAt sql.NullTime
	)

	err := s.Scan(
		&v.ID,
		&v.Email,
		&v.ServerURLs.Vault,
		&v.ServerURLs.Identity,
		&v.ServerURLs.API,
		&kdfType,
		&v.Kdf.Iterations,
		&v.Kdf.Memory,
		&v.Kdf.Parallelism,
		&lastSyncAt,
		&v.RevisionStamp,
		&v.CreatedAt,
	)
	if err != nil {
		return models.Vault{}, err
	}

	v.Kdf.Type = models.KdfType(kdfType)
	if lastSyncAt.Valid {
		t := lastSyncAt.Time
		v.LastSyncAt = &t
	}

	return v, nil
}
