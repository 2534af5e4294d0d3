package adapter

import (
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/config"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/utils"
	"github.com/MKhiriev/go-warden-sync/models"
)

type httpFactory struct {
	timeout time.Duration
	logger  *logger.Logger
}

// NewHTTPAdapterFactory constructs a [Factory] whose adapters use resty with
// the request timeout from adapterCfg.
func NewHTTPAdapterFactory(adapterCfg config.ClientAdapter, log *logger.Logger) Factory {
	if log == nil {
		log = logger.Nop()
	}
	return &httpFactory{timeout: adapterCfg.RequestTimeout, logger: log}
}

// Identity implements [Factory].
func (f *httpFactory) Identity(urls models.ServerURLs) IdentityAdapter {
	client := utils.NewHTTPClient(f.timeout)
	client.SetBaseURL(baseOrRaw(urls.Identity))

	return &httpIdentityAdapter{client: client, urls: urls, logger: f.logger}
}

// Vault implements [Factory].
func (f *httpFactory) Vault(urls models.ServerURLs, accessToken string) VaultAdapter {
	client := utils.NewHTTPClient(f.timeout)
	client.SetBaseURL(baseOrRaw(urls.API))

	a := &httpVaultAdapter{client: client, logger: f.logger}
	a.SetToken(accessToken)
	return a
}

// baseOrRaw normalises raw and keeps it unchanged if it does not parse, so
// the request itself reports the bad address.
func baseOrRaw(raw string) string {
	if u, err := normalizeBaseURL(raw); err == nil {
		return u
	}
	return raw
}
