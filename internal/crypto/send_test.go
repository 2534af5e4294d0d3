package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSendKeyMaterial(t *testing.T) {
	a, err := GenerateSendKeyMaterial()
	require.NoError(t, err)
	b, err := GenerateSendKeyMaterial()
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}

func TestDeriveSendKey(t *testing.T) {
	material := bytes.Repeat([]byte{0x09}, 16)

	k1, err := DeriveSendKey(material)
	require.NoError(t, err)
	defer k1.Close()
	k2, err := DeriveSendKey(material)
	require.NoError(t, err)
	defer k2.Close()

	enc, err := EncryptString("shared text", k1)
	require.NoError(t, err)
	plain, err := DecryptToString(enc, k2)
	require.NoError(t, err)
	assert.Equal(t, "shared text", plain)

	_, err = DeriveSendKey(nil)
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestHashSendPassword(t *testing.T) {
	material := bytes.Repeat([]byte{0x09}, 16)

	h1 := HashSendPassword("pw", material)
	assert.Equal(t, h1, HashSendPassword("pw", material))
	assert.NotEqual(t, h1, HashSendPassword("pw2", material))
	assert.NotEqual(t, h1, HashSendPassword("pw", bytes.Repeat([]byte{0x0A}, 16)))
}
