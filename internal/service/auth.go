// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/adapter"
	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/utils"
	"github.com/MKhiriev/go-warden-sync/models"
)

// DeviceIdentity supplies the per-install device identifier sent with
// every token request.
type DeviceIdentity interface {
	DeviceID() (string, error)
}

type authSessionManager struct {
	adapters adapter.Factory
	device   DeviceIdentity
	uuids    *utils.UUIDGenerator
	logger   *logger.Logger
	now      func() time.Time
}

func NewAuthSessionManager(adapters adapter.Factory, device DeviceIdentity, log *logger.Logger) AuthSessionManager {
	return &authSessionManager{
		adapters: adapters,
		device:   device,
		uuids:    utils.NewUUIDGenerator(),
		logger:   log,
		now:      time.Now,
	}
}

func (a *authSessionManager) PreLogin(ctx context.Context, urls models.ServerURLs, email string) (*LoginFlow, error) {
	identity := a.adapters.Identity(urls)

	resp, err := identity.PreLogin(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("prelogin: %w", err)
	}

	return &LoginFlow{
		identity: identity,
		urls:     urls,
		email:    email,
		kdf:      resp.Params(),
		deviceID: a.deviceID(),
		logger:   a.logger,
		now:      a.now,
		state:    StatePreLoginDone,
	}, nil
}

// deviceID falls back to a fresh random id when the device state is
// unavailable. The server then treats this install as a new device.
func (a *authSessionManager) deviceID() string {
	if a.device != nil {
		id, err := a.device.DeviceID()
		if err == nil && id != "" {
			return id
		}
		a.logger.Warn().Err(err).Str("func", "authSessionManager.deviceID").Msg("device id unavailable, using random id")
	}
	return a.uuids.Generate()
}

func (a *authSessionManager) RefreshToken(ctx context.Context, session *Session) error {
	refresh := session.RefreshToken()
	if refresh == "" {
		return ErrNoRefreshToken
	}

	resp, err := a.adapters.Identity(session.URLs).Refresh(ctx, refresh)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	if resp.AccessToken == "" {
		return ErrEmptyAccessToken
	}

	session.ApplyRefresh(resp, a.now())
	return nil
}

// LoginState is the position of a [LoginFlow] in the login state machine.
type LoginState int

const (
	StateInit LoginState = iota
	StatePreLoginDone
	StateCredentialsSubmitted
	StateSuccess
	StateTwoFactorRequired
	StateNewDeviceOtpRequired
	StateCaptchaRequired
	StateFailed
)

func (s LoginState) String() string {
	switch s {
	case StateInit:
		return "init"
	case StatePreLoginDone:
		return "prelogin-done"
	case StateCredentialsSubmitted:
		return "credentials-submitted"
	case StateSuccess:
		return "success"
	case StateTwoFactorRequired:
		return "two-factor-required"
	case StateNewDeviceOtpRequired:
		return "new-device-otp-required"
	case StateCaptchaRequired:
		return "captcha-required"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoginResult is one of [LoginSuccess], [TwoFactorRequired] or
// [CaptchaRequired].
type LoginResult interface {
	loginResult()
}

// LoginSuccess carries the authenticated session.
type LoginSuccess struct {
	Session *Session
}

// TwoFactorRequired asks for a second factor. A new-device verification is
// reported with the single provider [models.TwoFactorEmailNewDevice].
// Keys are the already derived master keys, reused for the next step.
type TwoFactorRequired struct {
	Providers    []models.TwoFactorProvider
	Email        string
	PasswordHash string
	Kdf          models.KdfParams
	Keys         *TempKeys
}

// NewDevice reports a new-device OTP challenge.
func (t TwoFactorRequired) NewDevice() bool {
	return len(t.Providers) == 1 && t.Providers[0] == models.TwoFactorEmailNewDevice
}

// CaptchaRequired asks the user to solve a captcha and log in again.
type CaptchaRequired struct {
	Message string
	SiteKey string
}

func (LoginSuccess) loginResult()      {}
func (TwoFactorRequired) loginResult() {}
func (CaptchaRequired) loginResult()   {}

// TempKeys holds the master key and its stretched form between login steps.
type TempKeys struct {
	masterKey []byte
	stretched *crypto.SymmetricKey
}

// Close zeroes both keys.
func (k *TempKeys) Close() {
	if k == nil {
		return
	}
	clear(k.masterKey)
	k.masterKey = nil
	k.stretched.Close()
}

// LoginFlow is a single login attempt. Methods are valid only in the
// states listed on each of them; otherwise they return ErrInvalidAuthState.
type LoginFlow struct {
	identity adapter.IdentityAdapter
	urls     models.ServerURLs
	email    string
	kdf      models.KdfParams
	deviceID string
	logger   *logger.Logger
	now      func() time.Time

	mu        sync.Mutex
	state     LoginState
	challenge *TwoFactorRequired
	profile   adapter.HeaderProfile
	closed    bool
}

// State returns the current state.
func (f *LoginFlow) State() LoginState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Kdf returns the parameters reported by prelogin.
func (f *LoginFlow) Kdf() models.KdfParams {
	return f.kdf
}

// Login derives the keys from password and sends the password grant. It is
// valid after prelogin, after a captcha challenge and after a failure.
func (f *LoginFlow) Login(ctx context.Context, password, captchaResponse string) (LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StatePreLoginDone, StateCaptchaRequired, StateFailed); err != nil {
		return nil, err
	}

	masterKey, err := crypto.DeriveMasterKey(password, f.email, f.kdf)
	if err != nil {
		f.state = StateFailed
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	stretched, err := crypto.StretchMasterKey(masterKey)
	if err != nil {
		clear(masterKey)
		f.state = StateFailed
		return nil, fmt.Errorf("stretch master key: %w", err)
	}
	keys := &TempKeys{masterKey: masterKey, stretched: stretched}
	hash := crypto.DeriveMasterPasswordHash(masterKey, password)

	req := models.TokenRequest{
		Email:           f.email,
		PasswordHash:    hash,
		DeviceID:        f.deviceID,
		CaptchaResponse: captchaResponse,
	}

	f.state = StateCredentialsSubmitted
	f.profile = adapter.HeaderProfileDefault
	resp, err := f.identity.Token(ctx, req, f.profile)

	var tokenErr *adapter.TokenError
	if errors.As(err, &tokenErr) && tokenErr.IsInvalidCredentials() && captchaResponse == "" {
		f.logger.Info().Str("func", "LoginFlow.Login").Msg("invalid credentials, retrying with fallback header profile")
		f.profile = adapter.HeaderProfileFallback
		resp, err = f.identity.Token(ctx, req, f.profile)
	}

	result, err := f.classify(resp, err, keys, hash, true)
	if _, pending := result.(TwoFactorRequired); !pending {
		keys.Close()
	}
	return result, err
}

// SubmitTwoFactor completes a two-factor challenge with code. A rejected
// code keeps the flow in StateTwoFactorRequired so it can be retried.
func (f *LoginFlow) SubmitTwoFactor(ctx context.Context, provider models.TwoFactorProvider, code string, remember bool) (LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StateTwoFactorRequired); err != nil {
		return nil, err
	}

	req := f.challengeRequest()
	req.TwoFactorToken = code
	req.TwoFactorProvider = &provider
	req.TwoFactorRemember = remember

	return f.submitChallenge(ctx, req, StateTwoFactorRequired)
}

// SubmitNewDeviceOtp completes a new-device verification with the emailed
// one-time password.
func (f *LoginFlow) SubmitNewDeviceOtp(ctx context.Context, otp string) (LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StateNewDeviceOtpRequired); err != nil {
		return nil, err
	}

	req := f.challengeRequest()
	req.NewDeviceOTP = otp

	return f.submitChallenge(ctx, req, StateNewDeviceOtpRequired)
}

// Close zeroes any key material the flow still carries.
func (f *LoginFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.dropChallenge()
	f.closed = true
}

func (f *LoginFlow) expect(states ...LoginState) error {
	if f.closed {
		return ErrLoginFlowClosed
	}
	for _, s := range states {
		if f.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidAuthState, f.state)
}

func (f *LoginFlow) challengeRequest() models.TokenRequest {
	return models.TokenRequest{
		Email:        f.email,
		PasswordHash: f.challenge.PasswordHash,
		DeviceID:     f.deviceID,
	}
}

func (f *LoginFlow) submitChallenge(ctx context.Context, req models.TokenRequest, retryState LoginState) (LoginResult, error) {
	challenge := f.challenge
	f.state = StateCredentialsSubmitted

	resp, err := f.identity.Token(ctx, req, f.profile)

	var tokenErr *adapter.TokenError
	if errors.As(err, &tokenErr) && (tokenErr.RequiresTwoFactor() || tokenErr.IsNewDeviceVerification()) {
		f.state = retryState
		return nil, fmt.Errorf("%w: %s", ErrTwoFactorInvalid, tokenErr.Message())
	}

	result, err := f.classify(resp, err, challenge.Keys, challenge.PasswordHash, false)
	if _, pending := result.(TwoFactorRequired); !pending {
		f.dropChallenge()
	}
	return result, err
}

func (f *LoginFlow) dropChallenge() {
	if f.challenge != nil {
		f.challenge.Keys.Close()
		f.challenge = nil
	}
}

// classify maps a token response to a login result and moves the state
// machine. allowTwoFactor is false when a challenge is being answered.
func (f *LoginFlow) classify(resp models.TokenResponse, err error, keys *TempKeys, hash string, allowTwoFactor bool) (LoginResult, error) {
	log := f.logger.With().Str("func", "LoginFlow.classify").Str("profile", f.profile.String()).Logger()

	if err != nil {
		var tokenErr *adapter.TokenError
		if !errors.As(err, &tokenErr) {
			f.state = StateFailed
			return nil, fmt.Errorf("token request: %w", err)
		}

		switch {
		case allowTwoFactor && tokenErr.IsNewDeviceVerification():
			log.Info().Msg("new device verification required")
			return f.twoFactor([]models.TwoFactorProvider{models.TwoFactorEmailNewDevice}, keys, hash, StateNewDeviceOtpRequired), nil
		case allowTwoFactor && tokenErr.RequiresTwoFactor():
			log.Info().Int("providers", len(tokenErr.Providers)).Msg("two-factor required")
			return f.twoFactor(tokenErr.Providers, keys, hash, StateTwoFactorRequired), nil
		case tokenErr.IsCaptcha():
			f.state = StateCaptchaRequired
			return CaptchaRequired{Message: tokenErr.Message(), SiteKey: tokenErr.CaptchaSiteKey}, nil
		default:
			f.state = StateFailed
			return nil, fmt.Errorf("%w: %w", ErrLoginRejected, tokenErr)
		}
	}

	if resp.AccessToken == "" {
		if allowTwoFactor && len(resp.TwoFactorProviders) > 0 {
			return f.twoFactor(resp.TwoFactorProviders, keys, hash, StateTwoFactorRequired), nil
		}
		f.state = StateFailed
		return nil, ErrEmptyAccessToken
	}

	vaultKey, err := crypto.DecryptSymmetricKey(resp.Key, keys.stretched)
	if err != nil {
		f.state = StateFailed
		return nil, fmt.Errorf("%w: %w", ErrVaultKeyDecrypt, err)
	}

	f.state = StateSuccess
	log.Info().Msg("login succeeded")
	return LoginSuccess{Session: newSession(f.email, f.urls, f.kdf, resp, vaultKey, f.now())}, nil
}

func (f *LoginFlow) twoFactor(providers []models.TwoFactorProvider, keys *TempKeys, hash string, state LoginState) TwoFactorRequired {
	challenge := TwoFactorRequired{
		Providers:    providers,
		Email:        f.email,
		PasswordHash: hash,
		Kdf:          f.kdf,
		Keys:         keys,
	}
	f.challenge = &challenge
	f.state = state
	return challenge
}
