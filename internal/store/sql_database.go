package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/migrations"
)

const (
	writeAttempts   = 3
	writeRetryDelay = 50 * time.Millisecond
)

// DB wraps the SQLite connection pool shared by all repositories.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Migrate applies the embedded goose migrations.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}

// execWithRetry runs a write statement, repeating it while the classifier
// reports the failure as transient.
func (db *DB) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res sql.Result
		err error
	)

	for attempt := 1; attempt <= writeAttempts; attempt++ {
		res, err = db.ExecContext(ctx, query, args...)
		if err == nil {
			return res, nil
		}
		if db.errorClassificator == nil || db.errorClassificator.Classify(err) != Retryable || attempt == writeAttempts {
			return nil, err
		}

		db.logger.Warn().
			Str("func", "DB.execWithRetry").
			Int("attempt", attempt).
			Err(err).
			Msg("database is busy, retrying write")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(writeRetryDelay * time.Duration(attempt)):
		}
	}

	return res, err
}
