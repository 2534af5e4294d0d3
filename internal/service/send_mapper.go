package service

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/models"
)

const (
	sendURLOfficial = "https://send.bitwarden.com/#/send/"
	sendURLEU       = "https://send.bitwarden.eu/#/send/"
	sendKeySize     = 16
)

// sendShareURL builds the link a recipient opens. The key material lives
// in the fragment so the server never sees it.
func sendShareURL(serverURL, accessID string, material []byte) string {
	base := strings.TrimRight(strings.TrimSpace(serverURL), "/")
	lower := strings.ToLower(base)

	switch {
	case strings.Contains(lower, "bitwarden.eu"):
		base = sendURLEU
	case strings.Contains(lower, "bitwarden.com"):
		base = sendURLOfficial
	default:
		base += "/#/send/"
	}
	return base + accessID + "/" + base64.RawURLEncoding.EncodeToString(material)
}

// sendKeyMaterial unwraps the Send key. Clients store either the raw 16
// bytes or their base64 text inside the cipher string.
func sendKeyMaterial(encrypted string, vaultKey *crypto.SymmetricKey) ([]byte, error) {
	raw, err := crypto.Decrypt(encrypted, vaultKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSendKey, err)
	}
	if len(raw) == sendKeySize {
		return raw, nil
	}
	if b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw))); err == nil && len(b) > 0 {
		return b, nil
	}
	return nil, fmt.Errorf("%w: unexpected key length %d", ErrInvalidSendKey, len(raw))
}

func decryptSend(vault models.Vault, resp models.SendResponse, vaultKey *crypto.SymmetricKey, now time.Time) (models.Send, error) {
	material, err := sendKeyMaterial(resp.Key, vaultKey)
	if err != nil {
		return models.Send{}, err
	}
	defer clear(material)

	sendKey, err := crypto.DeriveSendKey(material)
	if err != nil {
		return models.Send{}, fmt.Errorf("%w: %w", ErrInvalidSendKey, err)
	}
	defer sendKey.Close()

	send := models.Send{
		VaultID:        vault.ID,
		ServerSendID:   resp.ID,
		AccessID:       resp.AccessID,
		KeyBase64:      base64.StdEncoding.EncodeToString(material),
		Type:           resp.Type,
		Name:           orDefault(decryptSoft(resp.Name, sendKey), "Untitled Send"),
		Notes:          decryptSoft(resp.Notes, sendKey),
		AccessCount:    resp.AccessCount,
		MaxAccessCount: resp.MaxAccessCount,
		HasPassword:    resp.Password != nil,
		Disabled:       resp.Disabled,
		HideEmail:      resp.HideEmail,
		RevisionDate:   resp.RevisionDate,
		ExpirationDate: resp.ExpirationDate,
		DeletionDate:   resp.DeletionDate,
		ShareURL:       sendShareURL(vault.ServerURLs.Vault, resp.AccessID, material),
		UpdatedAt:      now,
	}
	if resp.Text != nil {
		send.Text = decryptSoft(resp.Text.Text, sendKey)
		send.TextHidden = resp.Text.Hidden
	}
	if resp.File != nil {
		send.FileName = orDefault(decryptSoft(resp.File.FileName, sendKey), resp.File.FileName)
		send.FileSize = resp.File.Size
	}
	return send, nil
}

// sendUnchanged reports whether the stored copy already matches resp.
func sendUnchanged(local models.Send, resp models.SendResponse) bool {
	return local.RevisionDate == resp.RevisionDate && local.AccessCount == resp.AccessCount
}
