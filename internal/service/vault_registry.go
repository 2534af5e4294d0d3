package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/store"
	"github.com/MKhiriev/go-warden-sync/models"
)

type vaultRegistry struct {
	vaults store.VaultRepository
	logger *logger.Logger
}

func NewVaultRegistry(vaults store.VaultRepository, log *logger.Logger) VaultRegistry {
	return &vaultRegistry{vaults: vaults, logger: log}
}

func (r *vaultRegistry) Ensure(ctx context.Context, email string, urls models.ServerURLs, kdf models.KdfParams) (models.Vault, error) {
	email = crypto.NormalizeEmail(email)

	vault, err := r.vaults.GetByEmail(ctx, email, urls.Vault)
	if errors.Is(err, store.ErrVaultNotFound) {
		vault, err = r.vaults.Insert(ctx, models.Vault{Email: email, ServerURLs: urls, Kdf: kdf})
		if err != nil {
			return models.Vault{}, fmt.Errorf("create vault: %w", err)
		}
		r.logger.Info().Str("func", "vaultRegistry.Ensure").Int64("vault_id", vault.ID).Msg("vault created")
		return vault, nil
	}
	if err != nil {
		return models.Vault{}, fmt.Errorf("find vault: %w", err)
	}

	if vault.Kdf != kdf {
		if err = r.vaults.UpdateKdf(ctx, vault.ID, kdf); err != nil {
			return models.Vault{}, fmt.Errorf("update vault kdf: %w", err)
		}
		vault.Kdf = kdf
	}
	return vault, nil
}

func (r *vaultRegistry) Get(ctx context.Context, vaultID int64) (models.Vault, error) {
	return r.vaults.Get(ctx, vaultID)
}
