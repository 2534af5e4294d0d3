package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/models"
)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &DB{DB: conn, errorClassificator: NewSQLiteErrorClassifier(), logger: logger.Nop()}, mock
}

var vaultRowColumns = []string{
	"id", "email", "server_url", "identity_url", "api_url",
	"kdf_type", "kdf_iterations", "kdf_memory", "kdf_parallelism",
	"last_sync_at", "revision_stamp", "created_at",
}

func TestVaultInsert_Success(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewVaultRepository(db, logger.Nop())

	urls := models.ResolveServerURLs("https://vault.example.org")
	mock.ExpectExec("INSERT INTO vaults").
		WithArgs("user@example.com", urls.Vault, urls.Identity, urls.API, 1, 3, 64, 4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	vault, err := repo.Insert(context.Background(), models.Vault{
		Email:      "user@example.com",
		ServerURLs: urls,
		Kdf:        models.KdfParams{Type: models.KdfArgon2id, Iterations: 3, Memory: 64, Parallelism: 4},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), vault.ID)
	assert.False(t, vault.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVaultInsert_Duplicate(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewVaultRepository(db, logger.Nop())

	mock.ExpectExec("INSERT INTO vaults").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})

	_, err := repo.Insert(context.Background(), models.Vault{Email: "u@example.com"})
	assert.ErrorIs(t, err, ErrVaultAlreadyExists)
}

func TestVaultGet(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		rows     *sqlmock.Rows
		queryErr error
		wantErr  error
		check    func(t *testing.T, v models.Vault)
	}{
		{
			name: "first sync pending",
			rows: sqlmock.NewRows(vaultRowColumns).
				AddRow(1, "u@example.com", "https://vault.example.org", "https://vault.example.org/identity",
					"https://vault.example.org/api", 0, 600000, 0, 0, nil, "", now),
			check: func(t *testing.T, v models.Vault) {
				assert.Equal(t, models.KdfPBKDF2, v.Kdf.Type)
				assert.True(t, v.IsFirstSync())
			},
		},
		{
			name: "synced vault",
			rows: sqlmock.NewRows(vaultRowColumns).
				AddRow(1, "u@example.com", models.OfficialVaultURL, models.OfficialIdentityURL,
					models.OfficialAPIURL, 1, 3, 64, 4, now, "stamp-1", now),
			check: func(t *testing.T, v models.Vault) {
				require.NotNil(t, v.LastSyncAt)
				assert.Equal(t, now, *v.LastSyncAt)
				assert.Equal(t, "stamp-1", v.RevisionStamp)
				assert.True(t, v.ServerURLs.IsOfficial())
			},
		},
		{
			name:     "not found",
			queryErr: sql.ErrNoRows,
			wantErr:  ErrVaultNotFound,
		},
		{
			name:     "driver error",
			queryErr: errors.New("disk I/O error"),
			wantErr:  ErrScanningRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			repo := NewVaultRepository(db, logger.Nop())

			exp := mock.ExpectQuery("SELECT (.+) FROM vaults WHERE id = ").WithArgs(1)
			if tt.queryErr != nil {
				exp.WillReturnError(tt.queryErr)
			} else {
				exp.WillReturnRows(tt.rows)
			}

			v, err := repo.Get(context.Background(), 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, v)
		})
	}
}

func TestVaultList(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewVaultRepository(db, logger.Nop())
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM vaults ORDER BY id").
		WillReturnRows(sqlmock.NewRows(vaultRowColumns).
			AddRow(1, "a@example.com", "https://a", "https://a/identity", "https://a/api", 0, 600000, 0, 0, nil, "", now).
			AddRow(2, "b@example.com", "https://b", "https://b/identity", "https://b/api", 0, 600000, 0, 0, nil, "", now))

	vaults, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, vaults, 2)
	assert.Equal(t, "b@example.com", vaults[1].Email)
}

func TestVaultUpdateSyncStatus(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewVaultRepository(db, logger.Nop())
	at := time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE vaults").
		WithArgs(at, "stamp-2", 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateSyncStatus(context.Background(), 4, at, "stamp-2"))

	mock.ExpectExec("UPDATE vaults").
		WithArgs(at, "stamp-2", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSyncStatus(context.Background(), 5, at, "stamp-2")
	assert.ErrorIs(t, err, ErrVaultNotFound)
}

func TestVaultUpdateKdf(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewVaultRepository(db, logger.Nop())

	mock.ExpectExec("UPDATE vaults").
		WithArgs(0, 700000, 0, 0, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateKdf(context.Background(), 2, models.KdfParams{Type: models.KdfPBKDF2, Iterations: 700000})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
