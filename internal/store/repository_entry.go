// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/models"
)

type entryRepository struct {
	*DB
	logger *logger.Logger
}

func NewEntryRepository(db *DB, logger *logger.Logger) EntryRepository {
	return &entryRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *entryRepository) Get(ctx context.Context, id int64) (models.Entry, error) {
	log := logger.FromContext(ctx)

	entry, err := scanEntry(r.QueryRowContext(ctx, getEntryByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, ErrEntryNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "entryRepository.Get").
			Int64("entry_id", id).
			Msg("failed to scan entry row")
		return models.Entry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return entry, nil
}

func (r *entryRepository) GetByCipherID(ctx context.Context, vaultID int64, cipherID string) (models.Entry, error) {
	log := logger.FromContext(ctx)

	entry, err := scanEntry(r.QueryRowContext(ctx, getEntryByCipherID, vaultID, cipherID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, ErrEntryNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "entryRepository.GetByCipherID").
			Int64("vault_id", vaultID).
			Str("cipher_id", cipherID).
			Msg("failed to scan entry row")
		return models.Entry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return entry, nil
}

func (r *entryRepository) ListByVault(ctx context.Context, vaultID int64) ([]models.Entry, error) {
	return r.list(ctx, "entryRepository.ListByVault", listEntriesByVault, vaultID)
}

func (r *entryRepository) ListPendingUpload(ctx context.Context, vaultID int64) ([]models.Entry, error) {
	return r.list(ctx, "entryRepository.ListPendingUpload", listEntriesPendingUpload, vaultID)
}

func (r *entryRepository) list(ctx context.Context, fn, query string, vaultID int64) ([]models.Entry, error) {
	log := logger.FromContext(ctx)

	rows, err := r.QueryContext(ctx, query, vaultID)
	if err != nil {
		log.Err(err).
			Str("func", fn).
			Int64("vault_id", vaultID).
			Msg("failed to execute query for entries")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", fn).
				Int64("vault_id", vaultID).
				Msg("failed to scan entry row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", fn).
			Int64("vault_id", vaultID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

func (r *entryRepository) CountLinked(ctx context.Context, vaultID int64) (int, error) {
	var n int
	if err := r.QueryRowContext(ctx, countLinkedEntries, vaultID).Scan(&n); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "entryRepository.CountLinked").
			Int64("vault_id", vaultID).
			Msg("failed to count linked entries")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return n, nil
}

func (r *entryRepository) Insert(ctx context.Context, entry models.Entry) (int64, error) {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}

	res, err := r.execWithRetry(ctx, insertEntry,
		string(entry.Kind),
		entry.Title,
		entry.Notes,
		entry.Favorite,
		entryData(entry.Data),
		entry.Secret,
		nullInt64(entry.Link.VaultID),
		nullString(entry.Link.CipherID),
		entry.Link.FolderID,
		entry.Link.RevisionDate,
		entry.Link.LocalModified,
		string(syncStatusOrDefault(entry.Link.SyncStatus)),
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEntryAlreadyLinked
		}
		log.Err(err).
			Str("func", "entryRepository.Insert").
			Str("kind", string(entry.Kind)).
			Msg("failed to insert entry")
		return 0, fmt.Errorf("%w: insert entry: %w", ErrExecutingStatement, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: entry id: %w", ErrExecutingStatement, err)
	}

	return id, nil
}

func (r *entryRepository) Update(ctx context.Context, entry models.Entry) error {
	log := logger.FromContext(ctx)

	res, err := r.execWithRetry(ctx, updateEntry,
		string(entry.Kind),
		entry.Title,
		entry.Notes,
		entry.Favorite,
		entryData(entry.Data),
		entry.Secret,
		nullInt64(entry.Link.VaultID),
		nullString(entry.Link.CipherID),
		entry.Link.FolderID,
		entry.Link.RevisionDate,
		entry.Link.LocalModified,
		string(syncStatusOrDefault(entry.Link.SyncStatus)),
		time.Now().UTC(),
		entry.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEntryAlreadyLinked
		}
		log.Err(err).
			Str("func", "entryRepository.Update").
			Int64("entry_id", entry.ID).
			Msg("failed to execute update for entry")
		return fmt.Errorf("%w: update entry (id=%d): %w", ErrExecutingStatement, entry.ID, err)
	}

	return requireAffected(res, ErrEntryNotFound)
}

func (r *entryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.execWithRetry(ctx, deleteEntry, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "entryRepository.Delete").
			Int64("entry_id", id).
			Msg("failed to delete entry")
		return fmt.Errorf("%w: delete entry (id=%d): %w", ErrExecutingStatement, id, err)
	}

	return requireAffected(res, ErrEntryNotFound)
}

func (r *entryRepository) DeleteLinkedNotIn(ctx context.Context, vaultID int64, keep []string) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := deleteScopedNotIn("entries", "cipher_id", vaultID, keep, sq.Expr("cipher_id IS NOT NULL"))
	if err != nil {
		return 0, err
	}

	res, err := r.execWithRetry(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "entryRepository.DeleteLinkedNotIn").
			Int64("vault_id", vaultID).
			Int("keep", len(keep)).
			Msg("failed to delete stale entries")
		return 0, fmt.Errorf("%w: delete stale entries: %w", ErrExecutingStatement, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %w", ErrExecutingStatement, err)
	}

	return n, nil
}

func scanEntry(s rowScanner) (models.Entry, error) {
	var (
		e          models.Entry
		kind       string
		data       string
		vaultID    sql.NullInt64
		cipherID   sql.NullString
		syncStatus string
	)

	err := s.Scan(
		&e.ID,
		&kind,
		&e.Title,
		&e.Notes,
		&e.Favorite,
		&data,
		&e.Secret,
		&vaultID,
		&cipherID,
		&e.Link.FolderID,
		&e.Link.RevisionDate,
		&e.Link.LocalModified,
		&syncStatus,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return models.Entry{}, err
	}

	e.Kind = models.EntryKind(kind)
	if data != "" {
		e.Data = json.RawMessage(data)
	}
	e.Link.VaultID = int64Ptr(vaultID)
	e.Link.CipherID = stringPtr(cipherID)
	e.Link.SyncStatus = models.SyncStatus(syncStatus)

	return e, nil
}

func entryData(data json.RawMessage) string {
	if len(data) == 0 {
		return "{}"
	}
	return string(data)
}

func syncStatusOrDefault(s models.SyncStatus) models.SyncStatus {
	if s == "" {
		return models.SyncStatusPending
	}
	return s
}
