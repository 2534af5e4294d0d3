package models

import "time"

// Folder is the local copy of a server folder, optionally linked to a
// local category.
type Folder struct {
	ID             int64
	VaultID        int64
	ServerFolderID string
	Name           string
	RevisionDate   string
	CategoryID     *int64
	UpdatedAt      time.Time
}

// ConflictType classifies a recorded divergence.
type ConflictType string

const (
	ConflictConcurrentEdit  ConflictType = "CONCURRENT_EDIT"
	ConflictVersionMismatch ConflictType = "VERSION_MISMATCH"
	ConflictServerDelete    ConflictType = "SERVER_DELETE"
	ConflictLocalDelete     ConflictType = "LOCAL_DELETE"
	ConflictSyncError       ConflictType = "SYNC_ERROR"
)

// ConflictBackup is an immutable record of a local-vs-server divergence.
// The snapshots never contain passwords or private keys.
type ConflictBackup struct {
	ID                 int64
	VaultID            int64
	EntryID            int64
	CipherID           string
	Type               ConflictType
	LocalDataJSON      string
	ServerDataJSON     string
	LocalRevisionDate  string
	ServerRevisionDate string
	EntryTitle         string
	Description        string
	CreatedAt          time.Time
}

// OperationType is a queued offline mutation.
type OperationType string

const (
	OperationCreate  OperationType = "CREATE"
	OperationUpdate  OperationType = "UPDATE"
	OperationDelete  OperationType = "DELETE"
	OperationRestore OperationType = "RESTORE"
)

// OperationStatus is the lifecycle state of a queued operation.
type OperationStatus string

const (
	OperationPending   OperationStatus = "PENDING"
	OperationCompleted OperationStatus = "COMPLETED"
	OperationFailed    OperationStatus = "FAILED"
)

// PendingOperation is one entry of the per-vault offline queue.
type PendingOperation struct {
	ID        int64
	VaultID   int64
	Type      OperationType
	EntryID   *int64
	CipherID  *string
	Status    OperationStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}
