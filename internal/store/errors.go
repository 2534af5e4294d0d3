package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrVaultNotFound is returned when no vault profile matches the
	// requested id or (email, server) pair.
	ErrVaultNotFound = errors.New("vault was not found")

	// ErrVaultAlreadyExists is returned when a vault profile for the same
	// email and server URL is already stored.
	ErrVaultAlreadyExists = errors.New("vault already exists")

	// ErrEntryNotFound is returned when a query targets a local entry
	// (by id or by vault and cipher id) that does not exist.
	ErrEntryNotFound = errors.New("entry was not found")

	// ErrEntryAlreadyLinked is returned when inserting an entry would create
	// a second local record for the same (vault_id, cipher_id) pair.
	ErrEntryAlreadyLinked = errors.New("cipher is already linked to another entry")

	// ErrFolderNotFound is returned when no folder matches the server folder id.
	ErrFolderNotFound = errors.New("folder was not found")

	// ErrSendNotFound is returned when no send matches the server send id.
	ErrSendNotFound = errors.New("send was not found")

	// ErrPendingOperationNotFound is returned when a status update targets a
	// queued operation that no longer exists.
	ErrPendingOperationNotFound = errors.New("pending operation was not found")

	// ErrNothingUpdated is returned when an UPDATE completes without error
	// but affects zero rows.
	ErrNothingUpdated = errors.New("nothing was updated")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrDeviceState is returned when the bbolt device state file cannot be
	// read or written.
	ErrDeviceState = errors.New("device state error")
)
