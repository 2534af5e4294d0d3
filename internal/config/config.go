// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// Defaults applied before any other source is merged.
const (
	DefaultServerURL         = "https://vault.bitwarden.com"
	DefaultRequestTimeout    = 30 * time.Second
	DefaultSyncInterval      = 5 * time.Minute
	DefaultDataLossThreshold = 0.5
	DefaultRefreshMargin     = 5 * time.Minute
	DefaultDatabasePath      = "warden.db"
	DefaultDeviceStatePath   = "device.db"
	DefaultLogFilePath       = "warden.log"
)

// StructuredConfig is the top-level configuration container for the
// go-warden-sync client. It aggregates all sub-configurations and is
// populated by merging defaults, an optional JSON file, environment
// variables and command-line flags.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Bitwarden identifies the account and the server deployment.
	Bitwarden Bitwarden `envPrefix:"BITWARDEN_"`

	// Adapter holds outbound HTTP settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the local database and device state locations.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds configuration for background sync jobs.
	Workers Workers `envPrefix:"WORKERS_"`

	// Sync holds tuning knobs for the sync orchestrator.
	Sync Sync `envPrefix:"SYNC_"`

	// Log holds log file settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Bitwarden identifies the remote account.
type Bitwarden struct {
	// ServerURL is the base URL of the deployment. Official US and EU hosts
	// are recognised; anything else is treated as self-hosted.
	// Env: BITWARDEN_SERVER_URL
	ServerURL string `env:"SERVER_URL"`

	// Email is the account email used for prelogin and login.
	// Env: BITWARDEN_EMAIL
	Email string `env:"EMAIL"`
}

// Adapter holds outbound HTTP settings.
type Adapter struct {
	// RequestTimeout bounds every request to the identity and API hosts.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage groups the configuration for local persistence.
type Storage struct {
	// DB holds the SQLite database settings.
	DB DB `envPrefix:"DB_"`

	// DeviceStatePath is the bbolt file holding the device identifier and
	// the local sealing key.
	// Env: STORAGE_DEVICE_STATE_PATH
	DeviceStatePath string `env:"DEVICE_STATE_PATH"`
}

// DB holds connection settings for the local database.
type DB struct {
	// DSN is the SQLite file path or URI (e.g. "file:warden.db?_foreign_keys=on").
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SyncInterval is the period of the background sync job.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// Sync holds sync orchestrator settings.
type Sync struct {
	// DataLossThreshold is the fraction of local synced entries that may
	// disappear from the server before a warning is attached to the result.
	// Env: SYNC_DATA_LOSS_THRESHOLD
	DataLossThreshold float64 `env:"DATA_LOSS_THRESHOLD"`

	// RefreshMargin is how long before expiry the access token is refreshed.
	// Env: SYNC_REFRESH_MARGIN
	RefreshMargin time.Duration `env:"REFRESH_MARGIN"`
}

// Log holds log output settings.
type Log struct {
	// FilePath is the client log file. An empty value logs to stdout.
	// Env: LOG_FILE_PATH
	FilePath string `env:"FILE_PATH"`
}

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Bitwarden: Bitwarden{ServerURL: DefaultServerURL},
		Adapter:   Adapter{RequestTimeout: DefaultRequestTimeout},
		Storage: Storage{
			DB:              DB{DSN: DefaultDatabasePath},
			DeviceStatePath: DefaultDeviceStatePath,
		},
		Workers: Workers{SyncInterval: DefaultSyncInterval},
		Sync: Sync{
			DataLossThreshold: DefaultDataLossThreshold,
			RefreshMargin:     DefaultRefreshMargin,
		},
		Log: Log{FilePath: DefaultLogFilePath},
	}
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources in the following priority order (later sources win
// for non-zero fields):
//  1. Built-in defaults
//  2. JSON file (path resolved from env and flags)
//  3. Environment variables
//  4. Command-line flags (args)
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withJSON().
		build()
}
