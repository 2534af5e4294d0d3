package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteErrorClassifier(t *testing.T) {
	c := NewSQLiteErrorClassifier()

	tests := []struct {
		name string
		err  error
		want ErrorClassification
	}{
		{name: "nil", err: nil, want: NonRetryable},
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: Retryable},
		{name: "locked", err: sqlite3.Error{Code: sqlite3.ErrLocked}, want: Retryable},
		{name: "constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint}, want: NonRetryable},
		{name: "wrapped busy", err: errors.Join(errors.New("exec"), sqlite3.Error{Code: sqlite3.ErrBusy}), want: Retryable},
		{name: "plain error", err: errors.New("boom"), want: NonRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.True(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}))
	assert.False(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}))
	assert.False(t, isUniqueViolation(errors.New("unique")))
}

func TestExecWithRetry_RetriesBusy(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec("DELETE FROM entries").WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})
	mock.ExpectExec("DELETE FROM entries").WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := db.execWithRetry(context.Background(), deleteEntry, 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecWithRetry_GivesUp(t *testing.T) {
	db, mock := newTestDB(t)

	for range writeAttempts {
		mock.ExpectExec("DELETE FROM entries").WillReturnError(sqlite3.Error{Code: sqlite3.ErrLocked})
	}

	_, err := db.execWithRetry(context.Background(), deleteEntry, 1)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecWithRetry_NoRetryForConstraint(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec("DELETE FROM entries").WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint})

	_, err := db.execWithRetry(context.Background(), deleteEntry, 1)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecWithRetry_ContextCancelled(t *testing.T) {
	db, mock := newTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())

	mock.ExpectExec("DELETE FROM entries").WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})
	cancel()

	_, err := db.execWithRetry(ctx, deleteEntry, 1)
	assert.Error(t, err)
}
