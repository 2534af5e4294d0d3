// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"net/url"
	"strings"
	"time"
)

// KdfType identifies the key-derivation function a Bitwarden account uses
// to turn the master password into the master key.
type KdfType int

const (
	// KdfPBKDF2 is PBKDF2-SHA256.
	KdfPBKDF2 KdfType = 0
	// KdfArgon2id is Argon2id (version 0x13).
	KdfArgon2id KdfType = 1
)

// Default KDF parameters used when the server does not return them.
const (
	DefaultPBKDF2Iterations  = 600000
	DefaultArgon2Iterations  = 3
	DefaultArgon2MemoryMB    = 64
	DefaultArgon2Parallelism = 4
)

// String returns a human-readable KDF name.
func (k KdfType) String() string {
	switch k {
	case KdfPBKDF2:
		return "pbkdf2-sha256"
	case KdfArgon2id:
		return "argon2id"
	default:
		return "unknown"
	}
}

// KdfParams holds the tuning parameters returned by prelogin.
// Memory is expressed in MiB, as the server sends it.
type KdfParams struct {
	Type        KdfType `json:"kdf"`
	Iterations  int     `json:"kdfIterations"`
	Memory      int     `json:"kdfMemory,omitempty"`
	Parallelism int     `json:"kdfParallelism,omitempty"`
}

// WithDefaults fills zero parameters with the protocol defaults for the
// selected KDF type.
func (p KdfParams) WithDefaults() KdfParams {
	switch p.Type {
	case KdfArgon2id:
		if p.Iterations <= 0 {
			p.Iterations = DefaultArgon2Iterations
		}
		if p.Memory <= 0 {
			p.Memory = DefaultArgon2MemoryMB
		}
		if p.Parallelism <= 0 {
			p.Parallelism = DefaultArgon2Parallelism
		}
	default:
		if p.Iterations <= 0 {
			p.Iterations = DefaultPBKDF2Iterations
		}
	}
	return p
}

// ServerURLs are the three endpoints of a Bitwarden deployment.
type ServerURLs struct {
	Vault    string `json:"vault"`
	Identity string `json:"identity"`
	API      string `json:"api"`
}

// Official Bitwarden cloud endpoints.
const (
	OfficialVaultURL    = "https://vault.bitwarden.com"
	OfficialIdentityURL = "https://identity.bitwarden.com"
	OfficialAPIURL      = "https://api.bitwarden.com"

	OfficialEUVaultURL    = "https://vault.bitwarden.eu"
	OfficialEUIdentityURL = "https://identity.bitwarden.eu"
	OfficialEUAPIURL      = "https://api.bitwarden.eu"
)

// ResolveServerURLs infers identity and API endpoints from the vault base URL.
// The official US and EU clouds use dedicated subdomains, self-hosted
// servers expose them under /identity and /api.
func ResolveServerURLs(base string) ServerURLs {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = OfficialVaultURL
	}
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}

	host := ""
	if u, err := url.Parse(base); err == nil {
		host = strings.ToLower(u.Hostname())
	}

	switch host {
	case "vault.bitwarden.com", "bitwarden.com":
		return ServerURLs{Vault: OfficialVaultURL, Identity: OfficialIdentityURL, API: OfficialAPIURL}
	case "vault.bitwarden.eu", "bitwarden.eu":
		return ServerURLs{Vault: OfficialEUVaultURL, Identity: OfficialEUIdentityURL, API: OfficialEUAPIURL}
	}

	return ServerURLs{Vault: base, Identity: base + "/identity", API: base + "/api"}
}

// IsOfficial reports whether the URLs point to the US or EU Bitwarden cloud.
func (u ServerURLs) IsOfficial() bool {
	return u.Vault == OfficialVaultURL || u.Vault == OfficialEUVaultURL
}

// Vault is a server connection profile. It never carries key material.
type Vault struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	ServerURLs    ServerURLs `json:"serverUrls"`
	Kdf           KdfParams  `json:"kdf"`
	LastSyncAt    *time.Time `json:"lastSyncAt,omitempty"`
	RevisionStamp string     `json:"revisionStamp,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// IsFirstSync reports whether the vault has never completed a full sync.
func (v Vault) IsFirstSync() bool {
	return v.LastSyncAt == nil
}
