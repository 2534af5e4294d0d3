package service

import (
	"strings"

	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/models"
)

// Login custom fields. Each value is written under the namespaced name and,
// where older clients used one, under the legacy name as well.
const (
	fieldAppPackage      = "monica_app_package"
	fieldAppName         = "monica_app_name"
	fieldEmail           = "monica_email"
	fieldPhone           = "monica_phone"
	fieldAddressLine     = "monica_address_line"
	fieldCity            = "monica_city"
	fieldState           = "monica_state"
	fieldZipCode         = "monica_zip_code"
	fieldCountry         = "monica_country"
	fieldPasskeyBindings = "monica_passkey_bindings"

	legacyAppPackage  = "appPackageName"
	legacyAppName     = "appName"
	legacyEmail       = "email"
	legacyPhone       = "phone"
	legacyAddressLine = "addressLine"
	legacyAddress     = "address"
	legacyCity        = "city"
	legacyState       = "state"
	legacyZipCode     = "zipCode"
	legacyCountry     = "country"

	androidAppScheme = "androidapp://"
	passkeySuffix    = " [Passkey]"
)

// customFieldMap decrypts field names and values. The first occurrence of a
// name wins.
func customFieldMap(fields []models.CipherField, key *crypto.SymmetricKey) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(crypto.DecryptOrPlain(f.Name, key))
		if name == "" {
			continue
		}
		if _, ok := out[name]; ok {
			continue
		}
		out[name] = crypto.DecryptOrPlain(f.Value, key)
	}
	return out
}

// firstField returns the first non-blank value among names.
func firstField(fields map[string]string, names ...string) string {
	for _, n := range names {
		if v := fields[n]; strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// loginFieldPairs lists the custom fields written for a password entry.
func loginFieldPairs(d models.LoginData) [][2]string {
	pairs := [][2]string{
		{fieldAppPackage, d.AppPackageName},
		{legacyAppPackage, d.AppPackageName},
		{fieldAppName, d.AppName},
		{legacyAppName, d.AppName},
		{fieldEmail, d.Email},
		{legacyEmail, d.Email},
		{fieldPhone, d.Phone},
		{legacyPhone, d.Phone},
		{fieldAddressLine, d.AddressLine},
		{fieldCity, d.City},
		{fieldState, d.State},
		{fieldZipCode, d.ZipCode},
		{fieldCountry, d.Country},
		{fieldPasskeyBindings, d.PasskeyBindings},
	}

	var address []string
	for _, part := range []string{d.AddressLine, d.City, d.State, d.ZipCode, d.Country} {
		if strings.TrimSpace(part) != "" {
			address = append(address, part)
		}
	}
	pairs = append(pairs, [2]string{legacyAddress, strings.Join(address, ", ")})

	out := pairs[:0]
	for _, p := range pairs {
		if strings.TrimSpace(p[1]) != "" {
			out = append(out, p)
		}
	}
	return out
}

// mergeFields keeps remote fields that are unnamed or whose name is not
// defined locally and puts them before the local fields.
func mergeFields(local, remote []models.CipherField, key *crypto.SymmetricKey) []models.CipherField {
	if len(local) == 0 {
		return remote
	}
	if len(remote) == 0 {
		return local
	}

	localNames := make(map[string]struct{}, len(local))
	for _, f := range local {
		if name := strings.TrimSpace(crypto.DecryptOrPlain(f.Name, key)); name != "" {
			localNames[name] = struct{}{}
		}
	}

	merged := make([]models.CipherField, 0, len(remote)+len(local))
	for _, f := range remote {
		name := strings.TrimSpace(crypto.DecryptOrPlain(f.Name, key))
		if _, clash := localNames[name]; name == "" || !clash {
			merged = append(merged, f)
		}
	}
	return append(merged, local...)
}
