package adapter

import (
	"encoding/base64"
	"strings"

	"github.com/MKhiriev/go-warden-sync/models"
)

// Client identification sent with every identity request.
const (
	DeviceType    = "8"
	DeviceName    = "linux"
	ClientID      = "desktop"
	ClientName    = "desktop"
	ClientVersion = "2025.9.1"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.6778.140 Safari/537.36"
	desktopUserAgent = "Bitwarden_Desktop/" + ClientVersion + " (Linux)"
)

// HeaderProfile selects the identity header set. Some deployments reject a
// browser-like request from a non-browser client; the fallback profile looks
// like the desktop application instead.
type HeaderProfile int

const (
	HeaderProfileDefault HeaderProfile = iota
	HeaderProfileFallback
)

func (p HeaderProfile) String() string {
	if p == HeaderProfileFallback {
		return "fallback"
	}
	return "default"
}

// identityHeaders builds the headers of a token request. email is the value
// as typed by the user.
func identityHeaders(urls models.ServerURLs, email string, profile HeaderProfile) map[string]string {
	h := map[string]string{
		"Auth-Email":               base64.RawURLEncoding.EncodeToString([]byte(strings.TrimSpace(email))),
		"Device-Type":              DeviceType,
		"Bitwarden-Client-Name":    ClientName,
		"Bitwarden-Client-Version": ClientVersion,
		"Cache-Control":            "no-store",
		"Keyguard-Client":          "1",
		"Accept":                   "application/json",
	}

	switch profile {
	case HeaderProfileFallback:
		h["User-Agent"] = desktopUserAgent
		if !urls.IsOfficial() && urls.Vault != "" {
			h["Origin"] = urls.Vault
			h["Referer"] = urls.Vault + "/"
		}
	default:
		h["User-Agent"] = browserUserAgent
		if urls.Vault != "" {
			h["Origin"] = urls.Vault
			h["Referer"] = urls.Vault + "/"
		}
	}
	return h
}
