// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/utils"
	"github.com/MKhiriev/go-warden-sync/models"
	"github.com/go-resty/resty/v2"
)

type httpVaultAdapter struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [VaultAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent requests.
func (h *httpVaultAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [VaultAdapter].
func (h *httpVaultAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Sync implements [VaultAdapter]. It GETs {api}/sync?excludeDomains=true.
func (h *httpVaultAdapter) Sync(ctx context.Context) (models.SyncResponse, error) {
	var sr models.SyncResponse

	resp, err := h.authedRequest(ctx).
		SetQueryParam("excludeDomains", "true").
		SetResult(&sr).
		Get("/sync")
	if err != nil {
		return models.SyncResponse{}, fmt.Errorf("sync request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SyncResponse{}, err
	}

	return sr, nil
}

// GetCipher implements [VaultAdapter]. It GETs {api}/ciphers/{id}.
func (h *httpVaultAdapter) GetCipher(ctx context.Context, cipherID string) (models.Cipher, error) {
	var c models.Cipher

	resp, err := h.authedRequest(ctx).
		SetPathParam("id", cipherID).
		SetResult(&c).
		Get("/ciphers/{id}")
	if err != nil {
		return models.Cipher{}, fmt.Errorf("get cipher request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Cipher{}, err
	}

	return c, nil
}

// CreateCipher implements [VaultAdapter]. It POSTs to {api}/ciphers.
func (h *httpVaultAdapter) CreateCipher(ctx context.Context, cipher models.Cipher) (models.Cipher, error) {
	var created models.Cipher

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(cipher).
		SetResult(&created).
		Post("/ciphers")
	if err != nil {
		return models.Cipher{}, fmt.Errorf("create cipher request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Cipher{}, err
	}
	if created.ID == "" {
		return models.Cipher{}, fmt.Errorf("%w: created cipher has no id", ErrInvalidResponse)
	}

	return created, nil
}

// UpdateCipher implements [VaultAdapter]. It PUTs to {api}/ciphers/{id}.
func (h *httpVaultAdapter) UpdateCipher(ctx context.Context, cipherID string, cipher models.Cipher) (models.Cipher, error) {
	var updated models.Cipher

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", cipherID).
		SetBody(cipher).
		SetResult(&updated).
		Put("/ciphers/{id}")
	if err != nil {
		return models.Cipher{}, fmt.Errorf("update cipher request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Cipher{}, err
	}

	return updated, nil
}

// DeleteCipher implements [VaultAdapter]. It sends DELETE {api}/ciphers/{id};
// 404 is treated as success.
func (h *httpVaultAdapter) DeleteCipher(ctx context.Context, cipherID string) error {
	resp, err := h.authedRequest(ctx).
		SetPathParam("id", cipherID).
		Delete("/ciphers/{id}")
	if err != nil {
		return fmt.Errorf("delete cipher request: %w", err)
	}

	err = mapHTTPError(resp)
	if errors.Is(err, ErrNotFound) {
		h.logger.Debug().Str("func", "*httpVaultAdapter.DeleteCipher").Str("cipher_id", cipherID).Msg("cipher already gone")
		return nil
	}
	return err
}

// RestoreCipher implements [VaultAdapter]. It PUTs {api}/ciphers/{id}/restore;
// 400 and 404 are treated as success.
func (h *httpVaultAdapter) RestoreCipher(ctx context.Context, cipherID string) error {
	resp, err := h.authedRequest(ctx).
		SetPathParam("id", cipherID).
		Put("/ciphers/{id}/restore")
	if err != nil {
		return fmt.Errorf("restore cipher request: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusBadRequest, http.StatusNotFound:
		h.logger.Debug().Str("func", "*httpVaultAdapter.RestoreCipher").Str("cipher_id", cipherID).Int("status", resp.StatusCode()).Msg("nothing to restore")
		return nil
	}
	return mapHTTPError(resp)
}

// CreateSend implements [VaultAdapter]. It POSTs to {api}/sends.
func (h *httpVaultAdapter) CreateSend(ctx context.Context, send models.SendRequest) (models.SendResponse, error) {
	var created models.SendResponse

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(send).
		SetResult(&created).
		Post("/sends")
	if err != nil {
		return models.SendResponse{}, fmt.Errorf("create send request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SendResponse{}, err
	}

	return created, nil
}

func (h *httpVaultAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Device-Type", DeviceType).
		SetHeader("Bitwarden-Client-Name", ClientName).
		SetHeader("Bitwarden-Client-Version", ClientVersion)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
