package service

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-warden-sync/internal/logger"
	"github.com/MKhiriev/go-warden-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── VaultRegistry ────────────────────────────────────────────────────────────

func TestVaultRegistry_Ensure(t *testing.T) {
	vaults := newMemVaults()
	r := NewVaultRegistry(vaults, logger.Nop())
	urls := models.ResolveServerURLs("https://vault.example.com")
	kdf := models.KdfParams{Type: models.KdfPBKDF2, Iterations: 600000}
	ctx := context.Background()

	created, err := r.Ensure(ctx, "  Alice@Example.COM ", urls, kdf)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Len(t, vaults.rows, 1)

	// повторный вход не создаёт второй профиль
	again, err := r.Ensure(ctx, "alice@example.com", urls, kdf)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Zero(t, vaults.kdfUpdates)

	argon := models.KdfParams{Type: models.KdfArgon2id, Iterations: 3, Memory: 64, Parallelism: 4}
	updated, err := r.Ensure(ctx, "alice@example.com", urls, argon)
	require.NoError(t, err)
	assert.Equal(t, argon, updated.Kdf)
	assert.Equal(t, 1, vaults.kdfUpdates)

	other, err := r.Ensure(ctx, "alice@example.com", models.ResolveServerURLs("https://bw.example.org"), kdf)
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, other.ID, "same email on another server is a separate vault")

	got, err := r.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, argon, got.Kdf)
}

// ── VaultLocks ───────────────────────────────────────────────────────────────

func TestVaultLocks(t *testing.T) {
	locks := NewVaultLocks()

	release, err := locks.Acquire(context.Background(), 1)
	require.NoError(t, err)

	_, ok := locks.TryAcquire(1)
	assert.False(t, ok, "vault 1 is busy")

	other, ok := locks.TryAcquire(2)
	require.True(t, ok, "vaults are independent")
	other()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locks.Acquire(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	again, ok := locks.TryAcquire(1)
	require.True(t, ok)
	again()
}
