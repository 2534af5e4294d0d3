package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictResolver_Record(t *testing.T) {
	repo := &memConflicts{}
	r := NewConflictResolver(repo, logger.Nop()).(*conflictResolver)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	local := linkedEntry(t, models.EntryKindPassword, "c1", "r1", models.LoginData{Username: "alice", Website: "https://mail.example.com"})
	local.ID = 7
	local.Title = "Mail"
	local.Secret = "sealed-password"

	backup, err := r.Record(context.Background(), testVault(), local, models.Cipher{ID: "c1", RevisionDate: "r2"})
	require.NoError(t, err)
	require.Len(t, repo.rows, 1)

	assert.Equal(t, int64(1), backup.ID)
	assert.Equal(t, int64(7), backup.EntryID)
	assert.Equal(t, "c1", backup.CipherID)
	assert.Equal(t, models.ConflictConcurrentEdit, backup.Type)
	assert.Equal(t, "r1", backup.LocalRevisionDate)
	assert.Equal(t, "r2", backup.ServerRevisionDate)
	assert.Equal(t, "Mail", backup.EntryTitle)
	assert.Equal(t, fixed, backup.CreatedAt)

	var snap map[string]any
	require.NoError(t, json.Unmarshal([]byte(backup.LocalDataJSON), &snap))
	assert.Equal(t, "alice", snap["username"])
	assert.Equal(t, "https://mail.example.com", snap["website"])

	// секреты в бэкап не попадают
	assert.NotContains(t, backup.LocalDataJSON, "sealed-password")
	assert.NotContains(t, backup.LocalDataJSON, "password")

	var server map[string]any
	require.NoError(t, json.Unmarshal([]byte(backup.ServerDataJSON), &server))
	assert.Equal(t, "c1", server["id"])
	assert.Equal(t, "r2", server["revisionDate"])
}

func TestConflictResolver_Record_BrokenDataStillBacksUp(t *testing.T) {
	repo := &memConflicts{}
	r := NewConflictResolver(repo, logger.Nop())

	local := linkedEntry(t, models.EntryKindPasskey, "c1", "r1", models.PasskeyData{})
	local.Data = json.RawMessage(`{not json`)

	_, err := r.Record(context.Background(), testVault(), local, models.Cipher{ID: "c1", RevisionDate: "r2"})
	require.NoError(t, err)
	assert.Len(t, repo.rows, 1)
}
