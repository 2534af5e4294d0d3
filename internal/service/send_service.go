package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/adapter"
	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/internal/store"
	"github.com/MKhiriev/go-warden-sync/models"
)

type sendService struct {
	adapters adapter.Factory
	sends    store.SendRepository
	logger   *logger.Logger
	now      func() time.Time
}

func NewSendService(adapters adapter.Factory, sends store.SendRepository, log *logger.Logger) SendService {
	return &sendService{
		adapters: adapters,
		sends:    sends,
		logger:   log,
		now:      time.Now,
	}
}

func (s *sendService) CreateTextSend(ctx context.Context, vault models.Vault, accessToken string, key *crypto.SymmetricKey, draft models.TextSendDraft) (models.Send, error) {
	if key == nil || key.Closed() {
		return models.Send{}, ErrVaultKeyUnavailable
	}
	if err := validateSendDraft(draft, s.now()); err != nil {
		return models.Send{}, err
	}

	material, err := crypto.GenerateSendKeyMaterial()
	if err != nil {
		return models.Send{}, err
	}
	defer clear(material)

	req, err := encodeTextSend(draft, material, key)
	if err != nil {
		return models.Send{}, err
	}

	resp, err := s.adapters.Vault(vault.ServerURLs, accessToken).CreateSend(ctx, req)
	if err != nil {
		return models.Send{}, fmt.Errorf("create send: %w", err)
	}

	send, err := decryptSend(vault, resp, key, s.now())
	if err != nil {
		return models.Send{}, err
	}
	if err = s.sends.Upsert(ctx, send); err != nil {
		return models.Send{}, fmt.Errorf("store send: %w", err)
	}

	s.logger.Info().Str("func", "sendService.CreateTextSend").
		Int64("vault_id", vault.ID).
		Str("send_id", resp.ID).
		Msg("text send created")

	return send, nil
}

func (s *sendService) List(ctx context.Context, vaultID int64) ([]models.Send, error) {
	return s.sends.ListByVault(ctx, vaultID)
}

func validateSendDraft(d models.TextSendDraft, now time.Time) error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidSendDraft)
	case d.DeletionDate.IsZero():
		return fmt.Errorf("%w: deletion date is required", ErrInvalidSendDraft)
	case !d.DeletionDate.After(now):
		return fmt.Errorf("%w: deletion date is in the past", ErrInvalidSendDraft)
	case d.ExpirationDate != nil && d.ExpirationDate.After(d.DeletionDate):
		return fmt.Errorf("%w: expiration date is after deletion date", ErrInvalidSendDraft)
	case d.MaxAccessCount < 0:
		return fmt.Errorf("%w: negative max access count", ErrInvalidSendDraft)
	}
	return nil
}

// encodeTextSend wraps the raw key material with the vault key and
// encrypts the payload with the derived Send key.
func encodeTextSend(d models.TextSendDraft, material []byte, vaultKey *crypto.SymmetricKey) (models.SendRequest, error) {
	wrapped, err := crypto.Encrypt(material, vaultKey)
	if err != nil {
		return models.SendRequest{}, fmt.Errorf("wrap send key: %w", err)
	}

	sendKey, err := crypto.DeriveSendKey(material)
	if err != nil {
		return models.SendRequest{}, fmt.Errorf("%w: %w", ErrInvalidSendKey, err)
	}
	defer sendKey.Close()

	enc := &cipherEncoder{key: sendKey}
	req := models.SendRequest{
		Type:         models.SendTypeText,
		Key:          wrapped,
		Name:         enc.always(d.Name),
		Notes:        enc.optional(d.Notes),
		Text:         &models.SendText{Text: enc.always(d.Text), Hidden: d.HideText},
		HideEmail:    d.HideEmail,
		DeletionDate: d.DeletionDate.UTC().Format(time.RFC3339),
	}
	if enc.err != nil {
		return models.SendRequest{}, fmt.Errorf("encrypt send: %w", enc.err)
	}

	if d.Password != "" {
		req.Password = crypto.HashSendPassword(d.Password, material)
	}
	if d.MaxAccessCount > 0 {
		n := d.MaxAccessCount
		req.MaxAccessCount = &n
	}
	if d.ExpirationDate != nil {
		exp := d.ExpirationDate.UTC().Format(time.RFC3339)
		req.ExpirationDate = &exp
	}
	return req, nil
}
