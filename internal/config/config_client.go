package config

import (
	"fmt"
	"time"
)

// ClientBitwarden identifies the Bitwarden account the client syncs with.
type ClientBitwarden struct {
	// ServerURL is the base URL of the deployment.
	ServerURL string
	// Email is the account email. It may be empty and asked interactively.
	Email string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite connection string used by the client.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
	// DeviceStatePath is the bbolt file with the device id and sealing key.
	DeviceStatePath string
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often client sync workers should run.
	SyncInterval time.Duration
}

// ClientSync contains sync orchestrator tuning.
type ClientSync struct {
	DataLossThreshold float64
	RefreshMargin     time.Duration
}

// ClientLog contains log output settings.
type ClientLog struct {
	FilePath string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	Bitwarden ClientBitwarden
	Adapter   ClientAdapter
	Storage   ClientStorage
	Workers   ClientWorkers
	Sync      ClientSync
	Log       ClientLog
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration. args are the command-line arguments
// without the program name.
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Bitwarden: ClientBitwarden{
			ServerURL: cfg.Bitwarden.ServerURL,
			Email:     cfg.Bitwarden.Email,
		},
		Adapter: ClientAdapter{
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
			DeviceStatePath: cfg.Storage.DeviceStatePath,
		},
		Workers: ClientWorkers{SyncInterval: cfg.Workers.SyncInterval},
		Sync: ClientSync{
			DataLossThreshold: cfg.Sync.DataLossThreshold,
			RefreshMargin:     cfg.Sync.RefreshMargin,
		},
		Log: ClientLog{FilePath: cfg.Log.FilePath},
	}

	return clientCfg, clientCfg.validate()
}
