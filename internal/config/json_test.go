package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Success(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	p := filepath.Join(dir, "config.json")

	jsonBody := `{
		"bitwarden": {
			"server_url": "https://vault.bitwarden.eu",
			"email": "user@example.com"
		},
		"adapter": { "request_timeout": "45s" },
		"storage": {
			"db": { "dsn": "/data/warden.db" },
			"device_state_path": "/data/device.db"
		},
		"workers": { "sync_interval": "15m" },
		"sync": { "data_loss_threshold": 0.3, "refresh_margin": "1m" },
		"log": { "file_path": "/data/warden.log" }
	}`

	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://vault.bitwarden.eu", cfg.Bitwarden.ServerURL)
	assert.Equal(t, "user@example.com", cfg.Bitwarden.Email)
	assert.Equal(t, 45*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, "/data/warden.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "/data/device.db", cfg.Storage.DeviceStatePath)
	assert.Equal(t, 15*time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, 0.3, cfg.Sync.DataLossThreshold)
	assert.Equal(t, time.Minute, cfg.Sync.RefreshMargin)
	assert.Equal(t, "/data/warden.log", cfg.Log.FilePath)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_FileNotFound(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading a json file")
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"bitwarden":`), 0o600))

	_, err := parseJSON(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", in: `"90s"`, want: 90 * time.Second},
		{name: "number of nanoseconds", in: `1000000000`, want: time.Second},
		{name: "bad string", in: `"soon"`, wantErr: true},
		{name: "bool", in: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration(2 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"2m0s"`, string(b))
}
