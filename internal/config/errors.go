package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidBitwardenConfigs indicates a missing server URL.
	ErrInvalidBitwardenConfigs = errors.New("invalid bitwarden configuration")
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, a zero request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid client storage settings
	// (for example, empty DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, zero sync interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidSyncConfigs indicates a data-loss threshold outside (0, 1]
	// or a negative refresh margin.
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
)
