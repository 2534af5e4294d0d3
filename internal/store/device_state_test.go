package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-warden-sync/internal/crypto"
	"github.com/MKhiriev/go-warden-sync/internal/utils"
)

func TestDeviceState_StableAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "device.db")

	ds, err := OpenDeviceState(path, crypto.NewKeyChainService())
	require.NoError(t, err)

	id, err := ds.DeviceID()
	require.NoError(t, err)
	assert.True(t, utils.IsValidUUID(id), "device id %q is not a uuid", id)

	key, err := ds.LocalKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)

	again, err := ds.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
	require.NoError(t, ds.Close())

	reopened, err := OpenDeviceState(path, crypto.NewKeyChainService())
	require.NoError(t, err)
	defer reopened.Close()

	reopenedID, err := reopened.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, id, reopenedID)

	reopenedKey, err := reopened.LocalKey()
	require.NoError(t, err)
	assert.Equal(t, key, reopenedKey)
}

type failingKeyChain struct{ crypto.KeyChainService }

func (failingKeyChain) GenerateDEK() ([]byte, error) { return nil, errors.New("no entropy") }

func TestDeviceState_KeyGenerationFailure(t *testing.T) {
	ds, err := OpenDeviceState(filepath.Join(t.TempDir(), "device.db"), failingKeyChain{})
	require.NoError(t, err)
	defer ds.Close()

	_, err = ds.LocalKey()
	assert.ErrorIs(t, err, ErrDeviceState)

	// идентификатор устройства не зависит от ключа
	_, err = ds.DeviceID()
	assert.NoError(t, err)
}
