package service

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/models"
)

// Login sub-types are told apart by shape, checked in this order: a fido2
// block means a passkey, a TOTP secret without a password means a
// standalone authenticator, anything else is a password.
func decodeLogin(c models.Cipher, key *crypto.SymmetricKey) (decoded, string, error) {
	login := c.Login
	if login == nil {
		return decoded{}, "no login data", nil
	}

	switch {
	case len(login.Fido2Credentials) > 0:
		return decodePasskey(c, key), "", nil
	case strings.TrimSpace(login.Totp) != "" && strings.TrimSpace(login.Password) == "":
		d, reason := decodeTotp(c, key)
		return d, reason, nil
	default:
		return decodePassword(c, key)
	}
}

func decodePassword(c models.Cipher, key *crypto.SymmetricKey) (decoded, string, error) {
	login := c.Login

	password := ""
	if strings.TrimSpace(login.Password) != "" {
		plain, err := crypto.DecryptToString(login.Password, key)
		if err != nil {
			return decoded{}, "", ErrPasswordDecrypt
		}
		password = plain
	}

	website, appPackage := splitLoginURIs(login.URIs, key)
	fields := customFieldMap(c.Fields, key)

	data := models.LoginData{
		Username:        decryptSoft(login.Username, key),
		Website:         website,
		Totp:            decryptSoft(login.Totp, key),
		AppPackageName:  orDefault(firstField(fields, fieldAppPackage, legacyAppPackage), appPackage),
		AppName:         firstField(fields, fieldAppName, legacyAppName),
		Email:           firstField(fields, fieldEmail, legacyEmail),
		Phone:           firstField(fields, fieldPhone, legacyPhone),
		AddressLine:     firstField(fields, fieldAddressLine, legacyAddressLine, legacyAddress),
		City:            firstField(fields, fieldCity, legacyCity),
		State:           firstField(fields, fieldState, legacyState),
		ZipCode:         firstField(fields, fieldZipCode, legacyZipCode),
		Country:         firstField(fields, fieldCountry, legacyCountry),
		PasskeyBindings: fields[fieldPasskeyBindings],
	}

	return decoded{
		kind:     models.EntryKindPassword,
		title:    orDefault(decryptSoft(c.Name, key), "Untitled"),
		notes:    decryptSoft(c.Notes, key),
		data:     data,
		password: password,
	}, "", nil
}

// splitLoginURIs returns the first web URI and the first android package.
func splitLoginURIs(uris []models.CipherURI, key *crypto.SymmetricKey) (website, appPackage string) {
	for _, u := range uris {
		uri := decryptSoft(u.URI, key)
		switch {
		case uri == "":
		case strings.HasPrefix(strings.ToLower(uri), androidAppScheme):
			if appPackage == "" {
				appPackage = uri[len(androidAppScheme):]
			}
		case website == "":
			website = uri
		}
	}
	return website, appPackage
}

func decodeTotp(c models.Cipher, key *crypto.SymmetricKey) (decoded, string) {
	secret := decryptSoft(c.Login.Totp, key)
	if strings.TrimSpace(secret) == "" {
		return decoded{}, "no totp secret"
	}

	name := orDefault(decryptSoft(c.Name, key), "Authenticator")
	data := models.TotpData{
		Secret:      secret,
		Issuer:      name,
		AccountName: decryptSoft(c.Login.Username, key),
	}
	parseOtpAuth(&data)

	return decoded{
		kind:  models.EntryKindTOTP,
		title: name,
		notes: decryptSoft(c.Notes, key),
		data:  data,
	}, ""
}

// parseOtpAuth fills period, digits and algorithm from an otpauth:// URI
// secret. Plain base32 secrets are left as they are.
func parseOtpAuth(d *models.TotpData) {
	if !strings.HasPrefix(strings.ToLower(d.Secret), "otpauth://") {
		return
	}
	u, err := url.Parse(d.Secret)
	if err != nil {
		return
	}

	q := u.Query()
	if issuer := q.Get("issuer"); issuer != "" {
		d.Issuer = issuer
	}
	if n, err := strconv.Atoi(q.Get("period")); err == nil && n > 0 {
		d.Period = n
	}
	if n, err := strconv.Atoi(q.Get("digits")); err == nil && n > 0 {
		d.Digits = n
	}
	if alg := q.Get("algorithm"); alg != "" {
		d.Algorithm = strings.ToUpper(alg)
	}
	if d.AccountName == "" {
		label := strings.TrimPrefix(u.Path, "/")
		if _, account, ok := strings.Cut(label, ":"); ok {
			label = account
		}
		d.AccountName = strings.TrimSpace(label)
	}
}

func decodeSecureNote(c models.Cipher, key *crypto.SymmetricKey) decoded {
	notes := decryptSoft(c.Notes, key)
	return decoded{
		kind:  models.EntryKindNote,
		title: orDefault(decryptSoft(c.Name, key), "Note"),
		notes: notes,
		data:  models.NoteData{Content: notes},
	}
}

func decodeCard(c models.Cipher, key *crypto.SymmetricKey) (decoded, string) {
	card := c.Card
	if card == nil {
		return decoded{}, "no card data"
	}

	brand := decryptSoft(card.Brand, key)
	return decoded{
		kind:  models.EntryKindBankCard,
		title: orDefault(decryptSoft(c.Name, key), "Card"),
		notes: decryptSoft(c.Notes, key),
		data: models.BankCardData{
			CardNumber:     decryptSoft(card.Number, key),
			CardholderName: decryptSoft(card.CardholderName, key),
			ExpiryMonth:    decryptSoft(card.ExpMonth, key),
			ExpiryYear:     decryptSoft(card.ExpYear, key),
			CVV:            decryptSoft(card.Code, key),
			BankName:       brand,
			Brand:          brand,
			CardType:       models.CardTypeCredit,
		},
	}, ""
}

func decodeIdentity(c models.Cipher, key *crypto.SymmetricKey) (decoded, string) {
	id := c.Identity
	if id == nil {
		return decoded{}, "no identity data"
	}

	fullName := strings.TrimSpace(decryptSoft(id.FirstName, key) + " " + decryptSoft(id.LastName, key))
	number := ""
	for _, v := range []string{id.LicenseNumber, id.PassportNumber, id.SSN} {
		if number = decryptSoft(v, key); number != "" {
			break
		}
	}

	return decoded{
		kind:  models.EntryKindDocument,
		title: orDefault(decryptSoft(c.Name, key), "Identity"),
		notes: decryptSoft(c.Notes, key),
		data: models.DocumentData{
			DocumentType:   guessDocumentType(id),
			DocumentNumber: number,
			FullName:       fullName,
			IssuedBy:       decryptSoft(id.Company, key),
			Nationality:    decryptSoft(id.Country, key),
			Email:          decryptSoft(id.Email, key),
			Phone:          decryptSoft(id.Phone, key),
		},
	}, ""
}

func guessDocumentType(id *models.CipherIdentity) models.DocumentType {
	switch {
	case strings.TrimSpace(id.PassportNumber) != "":
		return models.DocumentTypePassport
	case strings.TrimSpace(id.LicenseNumber) != "":
		return models.DocumentTypeDriverLicense
	case strings.TrimSpace(id.SSN) != "":
		return models.DocumentTypeIDCard
	default:
		return models.DocumentTypeOther
	}
}

// decodePasskey reads the metadata of the first fido2 credential. Fields
// may be encrypted or plain depending on the client that wrote them.
func decodePasskey(c models.Cipher, key *crypto.SymmetricKey) decoded {
	cred := c.Login.Fido2Credentials[0]
	name := strings.TrimSuffix(orDefault(decryptSoft(c.Name, key), "Passkey"), passkeySuffix)
	userName := crypto.DecryptOrPlain(cred.UserName, key)
	if userName == "" {
		userName = decryptSoft(c.Login.Username, key)
	}

	counter, _ := strconv.Atoi(strings.TrimSpace(crypto.DecryptOrPlain(cred.Counter, key)))
	rpID := crypto.DecryptOrPlain(cred.RpID, key)

	data := models.PasskeyData{
		CredentialID:    crypto.DecryptOrPlain(cred.CredentialID, key),
		RpID:            rpID,
		RpName:          orDefault(crypto.DecryptOrPlain(cred.RpName, key), orDefault(name, rpID)),
		UserHandle:      crypto.DecryptOrPlain(cred.UserHandle, key),
		UserName:        userName,
		UserDisplayName: orDefault(crypto.DecryptOrPlain(cred.UserDisplayName, key), userName),
		KeyAlgorithm:    crypto.DecryptOrPlain(cred.KeyAlgorithm, key),
		KeyCurve:        crypto.DecryptOrPlain(cred.KeyCurve, key),
		Counter:         counter,
		Discoverable:    parseBoolText(crypto.DecryptOrPlain(cred.Discoverable, key)),
		CreationDate:    crypto.DecryptOrPlain(cred.CreationDate, key),
		Mode:            models.PasskeyModeBitwarden,
	}

	return decoded{
		kind:    models.EntryKindPasskey,
		title:   name,
		notes:   decryptSoft(c.Notes, key),
		data:    data,
		passkey: &data,
	}
}

func parseBoolText(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "false", "0", "no":
		return false
	default:
		return true
	}
}
