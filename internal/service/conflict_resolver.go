package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/store"
	"github.com/MKhiriev/go-warden-sync/models"
)

const concurrentEditDescription = "local and server both modified this entry"

// localSnapshot is the non-secret view of a local entry kept in a backup.
type localSnapshot struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Website  string `json:"website"`
	Username string `json:"username"`
	Notes    string `json:"notes"`
}

type serverSnapshot struct {
	ID           string `json:"id"`
	RevisionDate string `json:"revisionDate"`
}

type conflictResolver struct {
	conflicts store.ConflictRepository
	logger    *logger.Logger
	now       func() time.Time
}

func NewConflictResolver(conflicts store.ConflictRepository, log *logger.Logger) ConflictResolver {
	return &conflictResolver{conflicts: conflicts, logger: log, now: time.Now}
}

func (r *conflictResolver) Record(ctx context.Context, vault models.Vault, local models.Entry, server models.Cipher) (models.ConflictBackup, error) {
	snapshot := localSnapshot{ID: local.ID, Title: local.Title, Notes: local.Notes}
	switch local.Kind {
	case models.EntryKindPassword:
		// битые данные не мешают сохранить бэкап
		if data, err := models.DecodeEntryData[models.LoginData](local); err == nil {
			snapshot.Website = data.Website
			snapshot.Username = data.Username
		}
	case models.EntryKindTOTP:
		if data, err := models.DecodeEntryData[models.TotpData](local); err == nil {
			snapshot.Username = data.AccountName
		}
	case models.EntryKindPasskey:
		if data, err := models.DecodeEntryData[models.PasskeyData](local); err == nil {
			snapshot.Website = data.RpID
			snapshot.Username = data.UserName
		}
	}

	localJSON, err := json.Marshal(snapshot)
	if err != nil {
		return models.ConflictBackup{}, fmt.Errorf("marshal local snapshot: %w", err)
	}
	serverJSON, err := json.Marshal(serverSnapshot{ID: server.ID, RevisionDate: server.RevisionDate})
	if err != nil {
		return models.ConflictBackup{}, fmt.Errorf("marshal server snapshot: %w", err)
	}

	backup := models.ConflictBackup{
		VaultID:            vault.ID,
		EntryID:            local.ID,
		CipherID:           server.ID,
		Type:               models.ConflictConcurrentEdit,
		LocalDataJSON:      string(localJSON),
		ServerDataJSON:     string(serverJSON),
		LocalRevisionDate:  local.Link.RevisionDate,
		ServerRevisionDate: server.RevisionDate,
		EntryTitle:         local.Title,
		Description:        concurrentEditDescription,
		CreatedAt:          r.now(),
	}

	backup.ID, err = r.conflicts.Insert(ctx, backup)
	if err != nil {
		return models.ConflictBackup{}, fmt.Errorf("store conflict backup: %w", err)
	}

	r.logger.Warn().
		Str("func", "conflictResolver.Record").
		Int64("vault_id", vault.ID).
		Int64("entry_id", local.ID).
		Str("cipher_id", server.ID).
		Msg("concurrent edit, local entry kept")

	return backup, nil
}
