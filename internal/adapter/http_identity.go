package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/utils"
	"github.com/MKhiriev/go-warden-sync/models"
)

const tokenScope = "api offline_access"

type httpIdentityAdapter struct {
	client *utils.HTTPClient
	urls   models.ServerURLs

	logger *logger.Logger
}

// PreLogin implements [IdentityAdapter]. It POSTs the email to
// POST {identity}/accounts/prelogin.
func (h *httpIdentityAdapter) PreLogin(ctx context.Context, email string) (models.PreLoginResponse, error) {
	var out models.PreLoginResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Device-Type", DeviceType).
		ForceContentType("application/json").
		SetBody(models.PreLoginRequest{Email: strings.TrimSpace(email)}).
		SetResult(&out).
		Post("/accounts/prelogin")
	if err != nil {
		return models.PreLoginResponse{}, fmt.Errorf("prelogin request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PreLoginResponse{}, err
	}

	return out, nil
}

// Token implements [IdentityAdapter]. It POSTs a form-encoded password grant
// to POST {identity}/connect/token.
func (h *httpIdentityAdapter) Token(ctx context.Context, req models.TokenRequest, profile HeaderProfile) (models.TokenResponse, error) {
	form := map[string]string{
		"grant_type":       "password",
		"username":         strings.TrimSpace(req.Email),
		"password":         req.PasswordHash,
		"scope":            tokenScope,
		"client_id":        ClientID,
		"deviceType":       DeviceType,
		"deviceIdentifier": req.DeviceID,
		"deviceName":       DeviceName,
	}
	if req.CaptchaResponse != "" {
		form["captchaResponse"] = req.CaptchaResponse
	}
	if req.NewDeviceOTP != "" {
		form["newDeviceOtp"] = strings.TrimSpace(req.NewDeviceOTP)
	}
	if req.TwoFactorProvider != nil && strings.TrimSpace(req.TwoFactorToken) != "" {
		form["twoFactorToken"] = strings.TrimSpace(req.TwoFactorToken)
		form["twoFactorProvider"] = strconv.Itoa(int(*req.TwoFactorProvider))
		form["twoFactorRemember"] = "0"
		if req.TwoFactorRemember {
			form["twoFactorRemember"] = "1"
		}
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeaders(identityHeaders(h.urls, req.Email, profile)).
		SetFormData(form).
		Post("/connect/token")
	if err != nil {
		return models.TokenResponse{}, fmt.Errorf("token request: %w", err)
	}

	log := h.logger
	if err = mapHTTPError(resp); err != nil {
		tokenErr := parseTokenError(resp.StatusCode(), resp.Body(), err)
		log.Debug().
			Str("func", "*httpIdentityAdapter.Token").
			Int("status", resp.StatusCode()).
			Str("profile", profile.String()).
			Str("error", tokenErr.Code).
			Msg("token request rejected")
		return models.TokenResponse{}, tokenErr
	}

	var out models.TokenResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.TokenResponse{}, fmt.Errorf("%w: decode token response: %v", ErrInvalidResponse, err)
	}
	out.TwoFactorProviders = parseProviders(resp.Body())

	return out, nil
}

// Refresh implements [IdentityAdapter].
func (h *httpIdentityAdapter) Refresh(ctx context.Context, refreshToken string) (models.RefreshResponse, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Device-Type", DeviceType).
		SetHeader("Cache-Control", "no-store").
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
			"client_id":     ClientID,
		}).
		Post("/connect/token")
	if err != nil {
		return models.RefreshResponse{}, fmt.Errorf("refresh request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		if resp.StatusCode() == http.StatusBadRequest {
			return models.RefreshResponse{}, parseTokenError(resp.StatusCode(), resp.Body(), err)
		}
		return models.RefreshResponse{}, err
	}

	var out models.RefreshResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.RefreshResponse{}, fmt.Errorf("%w: decode refresh response: %v", ErrInvalidResponse, err)
	}
	if out.AccessToken == "" {
		return models.RefreshResponse{}, fmt.Errorf("%w: refresh response without access_token", ErrInvalidResponse)
	}
	return out, nil
}
