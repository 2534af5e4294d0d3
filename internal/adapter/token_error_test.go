package adapter

import (
	"strings"
	"testing"

	"github.com/MKhiriev/go-warden-sync/models"
	"github.com/stretchr/testify/assert"
)

func TestParseTokenError_Classification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		invalid     bool
		newDevice   bool
		captcha     bool
		providers   []models.TwoFactorProvider
		wantMessage string
	}{
		{
			name:        "invalid credentials",
			status:      400,
			body:        `{"error":"invalid_grant","error_description":"invalid_username_or_password"}`,
			invalid:     true,
			wantMessage: "invalid_username_or_password",
		},
		{
			name:        "invalid credentials in error model only",
			status:      400,
			body:        `{"error":"invalid_grant","ErrorModel":{"Message":"Username or password is incorrect. Try again.","Object":"error"},"invalid_username_or_password":true}`,
			invalid:     true,
			wantMessage: "Username or password is incorrect. Try again.",
		},
		{
			name:        "new device verification",
			status:      400,
			body:        `{"error":"invalid_grant","error_description":"New device verification required"}`,
			newDevice:   true,
			wantMessage: "New device verification required",
		},
		{
			name:        "captcha site key",
			status:      400,
			body:        `{"error":"invalid_grant","HCaptcha_SiteKey":"site-key"}`,
			captcha:     true,
			wantMessage: "invalid_grant",
		},
		{
			name:      "providers array with strings",
			status:    400,
			body:      `{"TwoFactorProviders":["0","3",1],"error":"invalid_grant"}`,
			providers: []models.TwoFactorProvider{0, 3, 1},
		},
		{
			name:        "non json body",
			status:      400,
			body:        "upstream said no",
			wantMessage: "upstream said no",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := parseTokenError(tt.status, []byte(tt.body), ErrBadRequest)

			assert.Equal(t, tt.invalid, e.IsInvalidCredentials(), "invalid credentials")
			assert.Equal(t, tt.newDevice, e.IsNewDeviceVerification(), "new device")
			assert.Equal(t, tt.captcha, e.IsCaptcha(), "captcha")
			if tt.providers != nil {
				assert.Equal(t, tt.providers, e.Providers)
			}
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, e.Message())
			}
			assert.ErrorIs(t, e, ErrBadRequest)
		})
	}
}

func TestTokenError_MessageTruncatesBody(t *testing.T) {
	e := parseTokenError(502, []byte(strings.Repeat("x", 500)), ErrBadGateway)
	assert.Len(t, e.Message(), maxErrorBody)
}

func TestTokenError_EmptyBody(t *testing.T) {
	e := parseTokenError(400, nil, ErrBadRequest)
	assert.Equal(t, "empty response", e.Message())
	assert.Empty(t, e.Providers)
	assert.False(t, e.IsCaptcha())
}
