package service

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/models"
)

// cipherEncoder encrypts the fields of one request and keeps the first
// error, so builders can be written as straight-line code.
type cipherEncoder struct {
	key *crypto.SymmetricKey
	err error
}

// always encrypts s, including an empty value.
func (e *cipherEncoder) always(s string) string {
	if e.err != nil {
		return ""
	}
	out, err := crypto.EncryptString(s, e.key)
	if err != nil {
		e.err = err
		return ""
	}
	return out
}

// optional encrypts s unless it is blank.
func (e *cipherEncoder) optional(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return e.always(s)
}

func (e *cipherEncoder) fields(pairs [][2]string) []models.CipherField {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]models.CipherField, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, models.CipherField{
			Name:  e.always(p[0]),
			Value: e.always(p[1]),
			Type:  models.FieldTypeText,
		})
	}
	return out
}

func (e *cipherEncoder) uris(values ...string) []models.CipherURI {
	var out []models.CipherURI
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, models.CipherURI{URI: e.always(v)})
	}
	return out
}

// encodeEntry builds the server cipher for a local entry. secret is the
// opened Entry.Secret (password or PKCS#8 key).
func encodeEntry(entry models.Entry, secret string, key *crypto.SymmetricKey) (models.Cipher, error) {
	enc := &cipherEncoder{key: key}

	c := models.Cipher{
		Name:     enc.always(orDefault(entry.Title, "Untitled")),
		Notes:    enc.optional(entry.Notes),
		Favorite: entry.Favorite,
	}
	if entry.Link.FolderID != "" {
		folder := entry.Link.FolderID
		c.FolderID = &folder
	}

	switch entry.Kind {
	case models.EntryKindPassword:
		data, err := models.DecodeEntryData[models.LoginData](entry)
		if err != nil {
			return models.Cipher{}, err
		}
		c.Type = models.CipherTypeLogin
		pkg := ""
		if data.AppPackageName != "" {
			pkg = androidAppScheme + strings.TrimPrefix(data.AppPackageName, androidAppScheme)
		}
		c.Login = &models.CipherLogin{
			Username: enc.optional(data.Username),
			Password: enc.optional(secret),
			Totp:     enc.optional(data.Totp),
			URIs:     enc.uris(data.Website, pkg),
		}
		c.Fields = enc.fields(loginFieldPairs(data))

	case models.EntryKindTOTP:
		data, err := models.DecodeEntryData[models.TotpData](entry)
		if err != nil {
			return models.Cipher{}, err
		}
		c.Type = models.CipherTypeLogin
		issuerURI := ""
		if data.Issuer != "" {
			issuerURI = "otpauth://totp/" + data.Issuer
		}
		c.Login = &models.CipherLogin{
			Username: enc.optional(data.AccountName),
			Totp:     enc.always(data.Secret),
			URIs:     enc.uris(issuerURI),
		}

	case models.EntryKindNote:
		data, err := models.DecodeEntryData[models.NoteData](entry)
		if err != nil {
			return models.Cipher{}, err
		}
		c.Type = models.CipherTypeSecureNote
		c.Notes = enc.optional(orDefault(data.Content, entry.Notes))
		c.SecureNote = &models.CipherSecureNote{Type: 0}

	case models.EntryKindBankCard:
		data, err := models.DecodeEntryData[models.BankCardData](entry)
		if err != nil {
			return models.Cipher{}, err
		}
		c.Type = models.CipherTypeCard
		c.Card = &models.CipherCard{
			CardholderName: enc.optional(data.CardholderName),
			Brand:          enc.optional(orDefault(data.BankName, data.Brand)),
			Number:         enc.optional(data.CardNumber),
			ExpMonth:       enc.optional(data.ExpiryMonth),
			ExpYear:        enc.optional(data.ExpiryYear),
			Code:           enc.optional(data.CVV),
		}

	case models.EntryKindDocument:
		data, err := models.DecodeEntryData[models.DocumentData](entry)
		if err != nil {
			return models.Cipher{}, err
		}
		c.Type = models.CipherTypeIdentity
		first, last := splitName(data.FullName)
		id := &models.CipherIdentity{
			FirstName: enc.optional(first),
			LastName:  enc.optional(last),
			Company:   enc.optional(data.IssuedBy),
			Country:   enc.optional(data.Nationality),
			Email:     enc.optional(data.Email),
			Phone:     enc.optional(data.Phone),
		}
		switch data.DocumentType {
		case models.DocumentTypeDriverLicense:
			id.LicenseNumber = enc.optional(data.DocumentNumber)
		case models.DocumentTypePassport:
			id.PassportNumber = enc.optional(data.DocumentNumber)
		case models.DocumentTypeIDCard:
			id.SSN = enc.optional(data.DocumentNumber)
		}
		c.Identity = id

	case models.EntryKindPasskey:
		data, err := models.DecodeEntryData[models.PasskeyData](entry)
		if err != nil {
			return models.Cipher{}, err
		}
		cred, err := encodeFido2(enc, data, secret)
		if err != nil {
			return models.Cipher{}, err
		}
		c.Type = models.CipherTypeLogin
		c.Login = &models.CipherLogin{
			Username:         enc.optional(data.UserName),
			URIs:             enc.uris(rpURI(data.RpID)),
			Fido2Credentials: []models.Fido2Credential{cred},
		}

	default:
		return models.Cipher{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, entry.Kind)
	}

	if enc.err != nil {
		return models.Cipher{}, fmt.Errorf("encrypt cipher: %w", enc.err)
	}
	return c, nil
}

func encodeFido2(enc *cipherEncoder, data models.PasskeyData, pkcs8 string) (models.Fido2Credential, error) {
	if data.Mode == models.PasskeyModeLegacy {
		return models.Fido2Credential{}, ErrPasskeyLegacyMode
	}

	der, err := decodeKeyBase64(pkcs8)
	if err != nil {
		return models.Fido2Credential{}, fmt.Errorf("%w: %w", ErrPasskeyInvalidKey, err)
	}
	defer clear(der)

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return models.Fido2Credential{}, fmt.Errorf("%w: %w", ErrPasskeyInvalidKey, err)
	}

	algorithm, curve := data.KeyAlgorithm, data.KeyCurve
	switch k := parsed.(type) {
	case *ecdsa.PrivateKey:
		algorithm = "ECDSA"
		curve = orDefault(curve, k.Curve.Params().Name)
	case *rsa.PrivateKey:
		algorithm = "RSA"
	default:
		return models.Fido2Credential{}, fmt.Errorf("%w: %T", ErrPasskeyInvalidKey, parsed)
	}

	return models.Fido2Credential{
		CredentialID:    enc.always(data.CredentialID),
		KeyType:         enc.always("public-key"),
		KeyAlgorithm:    enc.always(algorithm),
		KeyCurve:        enc.optional(curve),
		KeyValue:        enc.always(base64.RawURLEncoding.EncodeToString(der)),
		RpID:            enc.always(data.RpID),
		RpName:          enc.optional(data.RpName),
		UserHandle:      enc.optional(data.UserHandle),
		UserName:        enc.optional(data.UserName),
		UserDisplayName: enc.optional(data.UserDisplayName),
		Counter:         enc.always(strconv.Itoa(data.Counter)),
		Discoverable:    enc.always(strconv.FormatBool(data.Discoverable)),
		CreationDate:    enc.optional(data.CreationDate),
	}, nil
}

// decodeKeyBase64 accepts standard and URL-safe base64, with or without
// padding.
func decodeKeyBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty private key")
	}
	s = strings.NewReplacer("-", "+", "_", "/").Replace(strings.TrimRight(s, "="))
	return base64.RawStdEncoding.DecodeString(s)
}

func rpURI(rpID string) string {
	if rpID == "" || strings.Contains(rpID, "://") {
		return rpID
	}
	return "https://" + rpID
}

// splitName puts the last word into the last name.
func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
