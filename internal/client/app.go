package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-warden-sync/internal/config"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/service"
	"github.com/MKhiriev/go-warden-sync/internal/workers"
	"github.com/MKhiriev/go-warden-sync/models"
)

// maxLoginSteps bounds the prompt loop: captcha retries, two-factor retries
// and the new-device step together.
const maxLoginSteps = 6

var (
	ErrNoServices        = errors.New("client services are not configured")
	ErrTooManyLoginSteps = errors.New("login not completed after too many attempts")
)

type App struct {
	services *service.Services
	cfg      *config.ClientConfig
	prompt   Prompter
	logger   *logger.Logger
}

func NewApp(services *service.Services, cfg *config.ClientConfig, prompt Prompter, log *logger.Logger) (*App, error) {
	if services == nil {
		return nil, ErrNoServices
	}
	return &App{services: services, cfg: cfg, prompt: prompt, logger: log}, nil
}

// Run signs in, performs the first sync in the foreground and then keeps
// syncing in the background until ctx is done.
func (a *App) Run(ctx context.Context) error {
	session, err := a.login(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	vault, err := a.services.Vaults.Ensure(ctx, session.Email, session.URLs, session.Kdf)
	if err != nil {
		return fmt.Errorf("open local vault: %w", err)
	}

	if err = a.initialSync(ctx, vault.ID, session); err != nil {
		return err
	}

	ws := workers.NewWorkers(
		workers.NewSyncWorker(a.services.SyncJob, vault.ID, session, a.cfg.Workers.SyncInterval, a.logger),
	)
	return ws.Run(ctx)
}

func (a *App) login(ctx context.Context) (*service.Session, error) {
	email := a.cfg.Bitwarden.Email
	if email == "" {
		var err error
		if email, err = a.prompt.Ask("Email"); err != nil {
			return nil, err
		}
	}

	urls := models.ResolveServerURLs(a.cfg.Bitwarden.ServerURL)
	flow, err := a.services.Auth.PreLogin(ctx, urls, email)
	if err != nil {
		return nil, err
	}
	defer flow.Close()

	password, err := a.prompt.AskSecret("Master password")
	if err != nil {
		return nil, err
	}

	result, err := flow.Login(ctx, password, "")
	var challenge service.TwoFactorRequired

	for step := 0; step < maxLoginSteps; step++ {
		if errors.Is(err, service.ErrTwoFactorInvalid) {
			a.logger.Info().Str("func", "App.login").Msg("two-factor code rejected")
			result, err = a.answerChallenge(ctx, flow, challenge, "Code rejected. ")
			continue
		}
		if err != nil {
			return nil, err
		}

		switch r := result.(type) {
		case service.LoginSuccess:
			return r.Session, nil
		case service.TwoFactorRequired:
			challenge = r
			result, err = a.answerChallenge(ctx, flow, r, "")
		case service.CaptchaRequired:
			var token string
			if token, err = a.prompt.Ask(fmt.Sprintf("Captcha required (site key %s). Captcha response", r.SiteKey)); err != nil {
				return nil, err
			}
			result, err = flow.Login(ctx, password, token)
		default:
			return nil, fmt.Errorf("unexpected login result %T", result)
		}
	}
	return nil, ErrTooManyLoginSteps
}

func (a *App) answerChallenge(ctx context.Context, flow *service.LoginFlow, challenge service.TwoFactorRequired, prefix string) (service.LoginResult, error) {
	if challenge.NewDevice() {
		otp, err := a.prompt.Ask(prefix + "New device code (sent by email)")
		if err != nil {
			return nil, err
		}
		return flow.SubmitNewDeviceOtp(ctx, otp)
	}

	provider := pickProvider(challenge.Providers)
	code, err := a.prompt.Ask(fmt.Sprintf("%sTwo-step code (%s)", prefix, provider))
	if err != nil {
		return nil, err
	}
	return flow.SubmitTwoFactor(ctx, provider, code, false)
}

// pickProvider prefers methods that can be answered with a typed code.
func pickProvider(providers []models.TwoFactorProvider) models.TwoFactorProvider {
	for _, want := range []models.TwoFactorProvider{models.TwoFactorAuthenticator, models.TwoFactorEmail, models.TwoFactorYubiKey} {
		for _, p := range providers {
			if p == want {
				return p
			}
		}
	}
	if len(providers) > 0 {
		return providers[0]
	}
	return models.TwoFactorAuthenticator
}

// initialSync runs one cycle and asks before an empty server snapshot
// wipes the local vault. Declining keeps the local data untouched.
func (a *App) initialSync(ctx context.Context, vaultID int64, session *service.Session) error {
	res, err := a.services.SyncJob.RunOnce(ctx, vaultID, session)
	if err != nil {
		return fmt.Errorf("initial sync: %w", err)
	}

	if blocked, ok := res.(service.EmptyVaultBlocked); ok {
		confirmed, err := a.prompt.Confirm(fmt.Sprintf("The server vault is empty. Remove %d local entries", blocked.LocalCount))
		if err != nil {
			return err
		}
		if !confirmed {
			a.logger.Warn().Str("func", "App.initialSync").Int64("vault_id", vaultID).Msg("empty server vault not applied")
			return nil
		}
		if res, err = a.services.SyncJob.RunOnce(ctx, vaultID, session, service.WithEmptyVaultConfirmed()); err != nil {
			return fmt.Errorf("initial sync: %w", err)
		}
	}

	if done, ok := res.(service.SyncCompleted); ok {
		a.logger.Info().Str("func", "App.initialSync").
			Int64("vault_id", vaultID).
			Int("added", done.Stats.Added).
			Int("updated", done.Stats.Updated).
			Int("conflicts", done.Stats.Conflicts).
			Int("errors", done.Stats.Errors).
			Int64("deleted", done.Stats.EntriesDeleted).
			Msg("initial sync completed")
		if done.Warning != "" {
			a.logger.Warn().Str("func", "App.initialSync").Int64("vault_id", vaultID).Msg(done.Warning)
		}
	}
	return nil
}
