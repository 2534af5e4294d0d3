package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveServerURLs(t *testing.T) {
	tests := []struct {
		name string
		base string
		want ServerURLs
	}{
		{
			name: "official us",
			base: "https://vault.bitwarden.com/",
			want: ServerURLs{Vault: OfficialVaultURL, Identity: OfficialIdentityURL, API: OfficialAPIURL},
		},
		{
			name: "official eu without scheme",
			base: "vault.bitwarden.eu",
			want: ServerURLs{Vault: OfficialEUVaultURL, Identity: OfficialEUIdentityURL, API: OfficialEUAPIURL},
		},
		{
			name: "empty defaults to us",
			base: "  ",
			want: ServerURLs{Vault: OfficialVaultURL, Identity: OfficialIdentityURL, API: OfficialAPIURL},
		},
		{
			name: "self hosted",
			base: "https://bw.example.org/",
			want: ServerURLs{
				Vault:    "https://bw.example.org",
				Identity: "https://bw.example.org/identity",
				API:      "https://bw.example.org/api",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveServerURLs(tt.base))
		})
	}
}

func TestKdfParams_WithDefaults(t *testing.T) {
	assert.Equal(t, KdfParams{Type: KdfPBKDF2, Iterations: DefaultPBKDF2Iterations}, KdfParams{}.WithDefaults())

	got := KdfParams{Type: KdfArgon2id}.WithDefaults()
	assert.Equal(t, DefaultArgon2Iterations, got.Iterations)
	assert.Equal(t, DefaultArgon2MemoryMB, got.Memory)
	assert.Equal(t, DefaultArgon2Parallelism, got.Parallelism)

	kept := KdfParams{Type: KdfArgon2id, Iterations: 5, Memory: 128, Parallelism: 2}.WithDefaults()
	assert.Equal(t, KdfParams{Type: KdfArgon2id, Iterations: 5, Memory: 128, Parallelism: 2}, kept)
}

func TestPreLoginResponse_Params(t *testing.T) {
	mem, par := 32, 2
	got := PreLoginResponse{Kdf: KdfArgon2id, KdfIterations: 4, KdfMemory: &mem, KdfParallelism: &par}.Params()
	assert.Equal(t, KdfParams{Type: KdfArgon2id, Iterations: 4, Memory: 32, Parallelism: 2}, got)
}

func TestCipher_IsDeleted(t *testing.T) {
	empty := ""
	date := "2025-01-01T00:00:00Z"
	assert.False(t, Cipher{}.IsDeleted())
	assert.False(t, Cipher{DeletedDate: &empty}.IsDeleted())
	assert.True(t, Cipher{DeletedDate: &date}.IsDeleted())

	snapshot := SyncResponse{Ciphers: []Cipher{{ID: "a"}, {ID: "b", DeletedDate: &date}}}
	active := snapshot.ActiveCiphers()
	assert.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)
}

func TestNewAppBuildInfo(t *testing.T) {
	info := NewAppBuildInfo("1.2.0", "", "abc123")
	assert.Equal(t, "1.2.0", info.BuildVersion())
	assert.Equal(t, "N/A", info.BuildDate())
	assert.Equal(t, "abc123", info.BuildCommit())
	assert.Equal(t, "Build version: 1.2.0\nBuild date: N/A\nBuild commit: abc123", info.String())
}
