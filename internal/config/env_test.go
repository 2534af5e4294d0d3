// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestParseEnv_AllFields(t *testing.T) {
	// Arrange
	envVars := map[string]string{
		"CONFIG": "/path/to/config.json",

		"BITWARDEN_SERVER_URL": "https://vault.bitwarden.eu",
		"BITWARDEN_EMAIL":      "user@example.com",

		"ADAPTER_REQUEST_TIMEOUT": "15s",

		"STORAGE_DB_DATABASE_URI":   "/var/lib/warden/warden.db",
		"STORAGE_DEVICE_STATE_PATH": "/var/lib/warden/device.db",

		"WORKERS_SYNC_INTERVAL": "10m",

		"SYNC_DATA_LOSS_THRESHOLD": "0.25",
		"SYNC_REFRESH_MARGIN":      "2m",

		"LOG_FILE_PATH": "/var/log/warden.log",
	}
	setEnvVars(t, envVars)

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
	assert.Equal(t, "https://vault.bitwarden.eu", cfg.Bitwarden.ServerURL)
	assert.Equal(t, "user@example.com", cfg.Bitwarden.Email)
	assert.Equal(t, 15*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "/var/lib/warden/warden.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "/var/lib/warden/device.db", cfg.Storage.DeviceStatePath)
	assert.Equal(t, 10*time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, 0.25, cfg.Sync.DataLossThreshold)
	assert.Equal(t, 2*time.Minute, cfg.Sync.RefreshMargin)
	assert.Equal(t, "/var/log/warden.log", cfg.Log.FilePath)
}

func TestParseEnv_PartialFields(t *testing.T) {
	t.Setenv("BITWARDEN_EMAIL", "only@example.com")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "only@example.com", cfg.Bitwarden.Email)
	assert.Empty(t, cfg.Bitwarden.ServerURL)
	assert.Zero(t, cfg.Workers.SyncInterval)
	assert.Zero(t, cfg.Sync.DataLossThreshold)
}

func TestParseEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad duration", key: "WORKERS_SYNC_INTERVAL", val: "every now and then"},
		{name: "bad float", key: "SYNC_DATA_LOSS_THRESHOLD", val: "half"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			err := parseEnv(&StructuredConfig{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "error getting env configs")
		})
	}
}

func TestParseEnv_BlankValuesIgnored(t *testing.T) {
	t.Setenv("BITWARDEN_EMAIL", "   ")
	// пустая длительность иначе вызвала бы ошибку парсинга
	t.Setenv("WORKERS_SYNC_INTERVAL", "")

	cfg := &StructuredConfig{Bitwarden: Bitwarden{Email: "keep@example.com"}}
	require.NoError(t, parseEnv(cfg))
	assert.Equal(t, "keep@example.com", cfg.Bitwarden.Email)
	assert.Zero(t, cfg.Workers.SyncInterval)
}
