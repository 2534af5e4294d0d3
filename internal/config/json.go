package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	Bitwarden struct {
		ServerURL string `json:"server_url"`
		Email     string `json:"email"`
	} `json:"bitwarden,omitempty"`

	Adapter struct {
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
		DeviceStatePath string `json:"device_state_path"`
	} `json:"storage,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`

	Sync struct {
		DataLossThreshold float64  `json:"data_loss_threshold"`
		RefreshMargin     Duration `json:"refresh_margin"`
	} `json:"sync,omitempty"`

	Log struct {
		FilePath string `json:"file_path"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Bitwarden: Bitwarden{
			ServerURL: jsonCfg.Bitwarden.ServerURL,
			Email:     jsonCfg.Bitwarden.Email,
		},
		Adapter: Adapter{
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			DeviceStatePath: jsonCfg.Storage.DeviceStatePath,
		},
		Workers: Workers{
			SyncInterval: time.Duration(jsonCfg.Workers.SyncInterval),
		},
		Sync: Sync{
			DataLossThreshold: jsonCfg.Sync.DataLossThreshold,
			RefreshMargin:     time.Duration(jsonCfg.Sync.RefreshMargin),
		},
		Log: Log{
			FilePath: jsonCfg.Log.FilePath,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
