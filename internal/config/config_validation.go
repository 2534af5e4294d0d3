// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

// validate checks that the final merged [StructuredConfig] satisfies the
// value ranges that every consumer relies on. Presence checks live in
// [ClientConfig.validate].
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.DataLossThreshold < 0 || cfg.Sync.DataLossThreshold > 1 {
		return ErrInvalidSyncConfigs
	}
	if cfg.Sync.RefreshMargin < 0 {
		return ErrInvalidSyncConfigs
	}
	return nil
}

func (cfg *ClientConfig) validate() error {
	if strings.TrimSpace(cfg.Bitwarden.ServerURL) == "" {
		return ErrInvalidBitwardenConfigs
	}

	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, ":memory:") || cfg.Storage.DeviceStatePath == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Sync.DataLossThreshold <= 0 || cfg.Sync.DataLossThreshold > 1 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
