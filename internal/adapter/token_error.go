package adapter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-warden-sync/models"
	"github.com/tidwall/gjson"
)

const (
	invalidGrant              = "invalid_grant"
	invalidUsernameOrPassword = "invalid_username_or_password"
	newDeviceVerification     = "new device verification required"
)

// TokenError is a rejected token grant. The identity server answers 400 for
// wrong credentials as well as for "second factor required", so callers
// inspect the parsed fields instead of the status code alone.
type TokenError struct {
	StatusCode     int
	Code           string
	Description    string
	ModelMessage   string
	Providers      []models.TwoFactorProvider
	CaptchaSiteKey string
	Body           string

	cause error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token request failed (%d): %s", e.StatusCode, e.Message())
}

// Unwrap returns the status sentinel (e.g. [ErrBadRequest]).
func (e *TokenError) Unwrap() error {
	return e.cause
}

// Message picks the most specific human readable text: error_description,
// then ErrorModel.Message, then error, then the raw body.
func (e *TokenError) Message() string {
	for _, s := range []string{e.Description, e.ModelMessage, e.Code} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	if e.Body != "" {
		return truncate(e.Body, maxErrorBody)
	}
	return "empty response"
}

// IsInvalidCredentials reports a plain wrong email/password answer.
func (e *TokenError) IsInvalidCredentials() bool {
	if e.StatusCode != 400 || !strings.EqualFold(e.Code, invalidGrant) {
		return false
	}
	return strings.Contains(e.Description, invalidUsernameOrPassword) ||
		strings.Contains(e.Body, invalidUsernameOrPassword)
}

// IsNewDeviceVerification reports that the server wants an emailed OTP for
// an unknown device.
func (e *TokenError) IsNewDeviceVerification() bool {
	return strings.Contains(strings.ToLower(e.Description), newDeviceVerification) ||
		strings.Contains(strings.ToLower(e.ModelMessage), newDeviceVerification)
}

// IsCaptcha reports that the server wants a captcha token.
func (e *TokenError) IsCaptcha() bool {
	return e.CaptchaSiteKey != "" || strings.Contains(strings.ToLower(e.Body), "captcha")
}

// RequiresTwoFactor reports that the server listed second-factor providers.
func (e *TokenError) RequiresTwoFactor() bool {
	return len(e.Providers) > 0
}

func parseTokenError(status int, body []byte, cause error) *TokenError {
	return &TokenError{
		StatusCode:     status,
		Code:           firstString(body, "error"),
		Description:    firstString(body, "error_description", "errorDescription"),
		ModelMessage:   firstString(body, "ErrorModel.Message", "errorModel.message", "ErrorModel.message"),
		Providers:      parseProviders(body),
		CaptchaSiteKey: firstString(body, "HCaptcha_SiteKey", "hCaptcha_SiteKey"),
		Body:           strings.TrimSpace(string(body)),
		cause:          cause,
	}
}

// parseProviders reads TwoFactorProviders (array of ints or numeric strings)
// and falls back to the keys of TwoFactorProviders2.
func parseProviders(body []byte) []models.TwoFactorProvider {
	if !gjson.ValidBytes(body) {
		return nil
	}

	var out []models.TwoFactorProvider
	seen := make(map[models.TwoFactorProvider]struct{})
	add := func(raw string) {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return
		}
		p := models.TwoFactorProvider(n)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, path := range []string{"TwoFactorProviders", "twoFactorProviders"} {
		if arr := gjson.GetBytes(body, path); arr.IsArray() {
			for _, v := range arr.Array() {
				add(v.String())
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, path := range []string{"TwoFactorProviders2", "twoFactorProviders2"} {
		if obj := gjson.GetBytes(body, path); obj.IsObject() {
			obj.ForEach(func(key, _ gjson.Result) bool {
				add(key.String())
				return true
			})
		}
	}
	return out
}

func firstString(body []byte, paths ...string) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, p := range paths {
		if v := gjson.GetBytes(body, p); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
