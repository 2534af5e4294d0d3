package config

import (
	"flag"
	"fmt"
	"time"
)

// ParseFlags parses all configuration flags from args (typically os.Args[1:]).
//
// Flags:
//
//	-server Bitwarden server URL
//	-email account email
//	-d database DSN
//	-device-state device state file path
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-sync-interval background sync interval (e.g., "5m")
//	-data-loss-threshold fraction of missing entries that triggers a warning
//	-refresh-margin token refresh margin (e.g., "5m")
//	-log-file log file path
//	-c/-config json file path with configs
func ParseFlags(args []string) (*StructuredConfig, error) {
	var (
		serverURL         string
		email             string
		databaseDSN       string
		deviceStatePath   string
		requestTimeout    time.Duration
		syncInterval      time.Duration
		dataLossThreshold float64
		refreshMargin     time.Duration
		logFilePath       string
		jsonConfigPath    string
	)

	fs := flag.NewFlagSet("warden", flag.ContinueOnError)
	fs.StringVar(&serverURL, "server", "", "Bitwarden server URL")
	fs.StringVar(&email, "email", "", "Account email")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&deviceStatePath, "device-state", "", "Device state file path")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Background sync interval (e.g., 5m)")
	fs.Float64Var(&dataLossThreshold, "data-loss-threshold", 0, "Fraction of missing entries that triggers a warning")
	fs.DurationVar(&refreshMargin, "refresh-margin", 0, "Token refresh margin (e.g., 5m)")
	fs.StringVar(&logFilePath, "log-file", "", "Log file path")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		Bitwarden: Bitwarden{
			ServerURL: serverURL,
			Email:     email,
		},
		Adapter: Adapter{RequestTimeout: requestTimeout},
		Storage: Storage{
			DB:              DB{DSN: databaseDSN},
			DeviceStatePath: deviceStatePath,
		},
		Workers: Workers{SyncInterval: syncInterval},
		Sync: Sync{
			DataLossThreshold: dataLossThreshold,
			RefreshMargin:     refreshMargin,
		},
		Log:          Log{FilePath: logFilePath},
		JSONFilePath: jsonConfigPath,
	}, nil
}
