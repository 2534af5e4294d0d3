// Package store is the local persistence layer of the client: a SQLite
// database holding vault profiles, decrypted-then-resealed entries, folders,
// sends, conflict backups and the offline operation queue, plus a bbolt file
// for per-install device state.
package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-warden-sync/models"
)

// VaultRepository stores server connection profiles. It never stores keys.
type VaultRepository interface {
	Insert(ctx context.Context, vault models.Vault) (models.Vault, error)
	Get(ctx context.Context, id int64) (models.Vault, error)
	GetByEmail(ctx context.Context, email, serverURL string) (models.Vault, error)
	List(ctx context.Context) ([]models.Vault, error)
	UpdateKdf(ctx context.Context, id int64, kdf models.KdfParams) error
	UpdateSyncStatus(ctx context.Context, id int64, syncedAt time.Time, revisionStamp string) error
}

// EntryRepository stores local entries of every kind in one table.
type EntryRepository interface {
	Get(ctx context.Context, id int64) (models.Entry, error)
	GetByCipherID(ctx context.Context, vaultID int64, cipherID string) (models.Entry, error)
	ListByVault(ctx context.Context, vaultID int64) ([]models.Entry, error)
	// ListPendingUpload returns entries that were never uploaded or carry
	// local modifications.
	ListPendingUpload(ctx context.Context, vaultID int64) ([]models.Entry, error)
	// CountLinked counts entries of the vault that reference a server cipher.
	CountLinked(ctx context.Context, vaultID int64) (int, error)
	Insert(ctx context.Context, entry models.Entry) (int64, error)
	Update(ctx context.Context, entry models.Entry) error
	Delete(ctx context.Context, id int64) error
	// DeleteLinkedNotIn removes linked entries of the vault whose cipher id is
	// not in keep. An empty keep removes every linked entry.
	DeleteLinkedNotIn(ctx context.Context, vaultID int64, keep []string) (int64, error)
}

// FolderRepository stores the local copy of server folders.
type FolderRepository interface {
	GetByServerID(ctx context.Context, vaultID int64, serverFolderID string) (models.Folder, error)
	ListByVault(ctx context.Context, vaultID int64) ([]models.Folder, error)
	Upsert(ctx context.Context, folder models.Folder) error
	DeleteNotIn(ctx context.Context, vaultID int64, keep []string) (int64, error)
}

// SendRepository stores the decrypted copy of server sends.
type SendRepository interface {
	GetByServerID(ctx context.Context, vaultID int64, serverSendID string) (models.Send, error)
	ListByVault(ctx context.Context, vaultID int64) ([]models.Send, error)
	Upsert(ctx context.Context, send models.Send) error
	DeleteNotIn(ctx context.Context, vaultID int64, keep []string) (int64, error)
}

// ConflictRepository is append-only.
type ConflictRepository interface {
	Insert(ctx context.Context, backup models.ConflictBackup) (int64, error)
	ListByVault(ctx context.Context, vaultID int64) ([]models.ConflictBackup, error)
}

// PendingOperationRepository is the per-vault offline queue.
type PendingOperationRepository interface {
	Enqueue(ctx context.Context, op models.PendingOperation) (int64, error)
	// ListRunnable returns PENDING and FAILED operations in insertion order.
	ListRunnable(ctx context.Context, vaultID int64) ([]models.PendingOperation, error)
	MarkCompleted(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, lastError string) error
	HasActiveDelete(ctx context.Context, vaultID int64, cipherID string) (bool, error)
	PurgeCompleted(ctx context.Context, vaultID int64) (int64, error)
}

// DeviceState keeps per-install values outside the vault database.
type DeviceState interface {
	// DeviceID returns the stable device identifier, generating one on first use.
	DeviceID() (string, error)
	// LocalKey returns the at-rest data encryption key, generating one on first use.
	LocalKey() ([]byte, error)
	Close() error
}
