package client

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/adapter"
	"github.com/MKhiriev/go-warden-sync/internal/config"
	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/mock"
	"github.com/MKhiriev/go-warden-sync/internal/service"
	"github.com/MKhiriev/go-warden-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// scriptedPrompter отвечает заранее заданными строками и запоминает вопросы.
type scriptedPrompter struct {
	answers []string
	asked   []string
}

func (p *scriptedPrompter) next(label string) (string, error) {
	p.asked = append(p.asked, label)
	if len(p.answers) == 0 {
		return "", errors.New("no scripted answer for " + label)
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptedPrompter) Ask(label string) (string, error)       { return p.next(label) }
func (p *scriptedPrompter) AskSecret(label string) (string, error) { return p.next(label) }
func (p *scriptedPrompter) Confirm(label string) (bool, error) {
	a, err := p.next(label)
	return a == "y", err
}

type spySyncJob struct {
	results   []service.SyncResult
	confirmed []bool
}

func (s *spySyncJob) Start(context.Context, int64, *service.Session, time.Duration) {}
func (s *spySyncJob) Stop()                                                        {}

func (s *spySyncJob) RunOnce(_ context.Context, _ int64, _ *service.Session, opts ...service.SyncOption) (service.SyncResult, error) {
	s.confirmed = append(s.confirmed, len(opts) > 0)
	res := s.results[0]
	s.results = s.results[1:]
	return res, nil
}

const (
	appEmail    = "alice@example.com"
	appPassword = "hunter2"
)

func newTestApp(t *testing.T, ctrl *gomock.Controller, prompt Prompter) (*App, *mock.MockIdentityAdapter) {
	t.Helper()
	factory := mock.NewMockFactory(ctrl)
	identity := mock.NewMockIdentityAdapter(ctrl)
	factory.EXPECT().Identity(gomock.Any()).Return(identity).AnyTimes()
	identity.EXPECT().PreLogin(gomock.Any(), appEmail).
		Return(models.PreLoginResponse{Kdf: models.KdfPBKDF2, KdfIterations: 5000}, nil).AnyTimes()

	services := &service.Services{Auth: service.NewAuthSessionManager(factory, nil, logger.Nop())}
	cfg := &config.ClientConfig{Bitwarden: config.ClientBitwarden{ServerURL: "https://vault.example.com"}}

	app, err := NewApp(services, cfg, prompt, logger.Nop())
	require.NoError(t, err)
	return app, identity
}

func wrappedVaultKey(t *testing.T) string {
	t.Helper()
	kdf := models.KdfParams{Type: models.KdfPBKDF2, Iterations: 5000}.WithDefaults()
	masterKey, err := crypto.DeriveMasterKey(appPassword, appEmail, kdf)
	require.NoError(t, err)
	stretched, err := crypto.StretchMasterKey(masterKey)
	require.NoError(t, err)
	defer stretched.Close()

	wrapped, err := crypto.Encrypt(bytes.Repeat([]byte{9}, 64), stretched)
	require.NoError(t, err)
	return wrapped
}

// ── login ────────────────────────────────────────────────────────────────────

func TestApp_Login_TwoFactorWithRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	prompt := &scriptedPrompter{answers: []string{appEmail, appPassword, "000000", "123456"}}
	app, identity := newTestApp(t, ctrl, prompt)
	wrapped := wrappedVaultKey(t)

	twoFactor := &adapter.TokenError{StatusCode: 400, Code: "invalid_grant", Providers: []models.TwoFactorProvider{models.TwoFactorEmail, models.TwoFactorAuthenticator}}
	gomock.InOrder(
		identity.EXPECT().Token(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.TokenResponse{}, twoFactor),
		identity.EXPECT().Token(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.TokenResponse{}, twoFactor),
		identity.EXPECT().Token(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.TokenRequest, _ adapter.HeaderProfile) (models.TokenResponse, error) {
				assert.Equal(t, "123456", req.TwoFactorToken)
				assert.Equal(t, models.TwoFactorAuthenticator, *req.TwoFactorProvider)
				return models.TokenResponse{AccessToken: "at", Key: wrapped}, nil
			}),
	)

	session, err := app.login(context.Background())
	require.NoError(t, err)
	defer session.Close()
	assert.Equal(t, "at", session.AccessToken())

	require.Len(t, prompt.asked, 4)
	assert.Equal(t, "Two-step code (authenticator)", prompt.asked[2])
	assert.True(t, strings.HasPrefix(prompt.asked[3], "Code rejected."))
}

func TestApp_Login_CaptchaThenNewDevice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	prompt := &scriptedPrompter{answers: []string{appEmail, appPassword, "captcha-ok", "4242"}}
	app, identity := newTestApp(t, ctrl, prompt)
	wrapped := wrappedVaultKey(t)

	gomock.InOrder(
		identity.EXPECT().Token(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(models.TokenResponse{}, &adapter.TokenError{StatusCode: 400, CaptchaSiteKey: "site"}),
		identity.EXPECT().Token(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.TokenRequest, _ adapter.HeaderProfile) (models.TokenResponse, error) {
				assert.Equal(t, "captcha-ok", req.CaptchaResponse)
				return models.TokenResponse{}, &adapter.TokenError{StatusCode: 400, Description: "New device verification required"}
			}),
		identity.EXPECT().Token(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.TokenRequest, _ adapter.HeaderProfile) (models.TokenResponse, error) {
				assert.Equal(t, "4242", req.NewDeviceOTP)
				return models.TokenResponse{AccessToken: "at", Key: wrapped}, nil
			}),
	)

	session, err := app.login(context.Background())
	require.NoError(t, err)
	session.Close()
	assert.Contains(t, prompt.asked[2], "site")
}

func TestApp_Login_Rejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	app, identity := newTestApp(t, ctrl, &scriptedPrompter{answers: []string{appEmail, "wrong"}})
	identity.EXPECT().Token(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.TokenResponse{}, &adapter.TokenError{StatusCode: 400, Code: "invalid_grant", Description: "account locked"})

	_, err := app.login(context.Background())
	assert.ErrorIs(t, err, service.ErrLoginRejected)
}

func TestPickProvider(t *testing.T) {
	assert.Equal(t, models.TwoFactorAuthenticator, pickProvider([]models.TwoFactorProvider{models.TwoFactorDuo, models.TwoFactorAuthenticator}))
	assert.Equal(t, models.TwoFactorDuo, pickProvider([]models.TwoFactorProvider{models.TwoFactorDuo}))
	assert.Equal(t, models.TwoFactorAuthenticator, pickProvider(nil))
}

// ── initialSync ──────────────────────────────────────────────────────────────

func TestApp_InitialSync_EmptyVault(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		confirmed []bool
	}{
		{name: "confirmed", answer: "y", confirmed: []bool{false, true}},
		{name: "declined", answer: "n", confirmed: []bool{false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &spySyncJob{results: []service.SyncResult{
				service.EmptyVaultBlocked{LocalCount: 4},
				service.SyncCompleted{},
			}}
			prompt := &scriptedPrompter{answers: []string{tt.answer}}
			app := &App{services: &service.Services{SyncJob: job}, prompt: prompt, logger: logger.Nop()}

			require.NoError(t, app.initialSync(context.Background(), 1, nil))
			assert.Equal(t, tt.confirmed, job.confirmed)
			assert.Contains(t, prompt.asked[0], "4 local entries")
		})
	}
}

func TestNewApp_NoServices(t *testing.T) {
	_, err := NewApp(nil, &config.ClientConfig{}, nil, logger.Nop())
	assert.ErrorIs(t, err, ErrNoServices)
}

// ── terminalPrompter ─────────────────────────────────────────────────────────

func TestTerminalPrompter_Scripted(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("  alice@example.com \n p@ss \nyes\n"), &out)

	email, err := p.Ask("Email")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	secret, err := p.AskSecret("Master password")
	require.NoError(t, err)
	assert.Equal(t, " p@ss ", secret, "secrets keep their spaces")

	ok, err := p.Confirm("Continue")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = p.Ask("More")
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Continue [y/N]: ")
}
