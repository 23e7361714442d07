package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Token string `json:"token"`
	N     int    `json:"n"`
}

func TestDeriveSealKey_DeterministicAnd32Bytes(t *testing.T) {
	secret := []byte("device-secret")
	salt := []byte("0123456789abcdef")

	k1 := DeriveSealKey(secret, salt)
	k2 := DeriveSealKey(secret, salt)

	require.Len(t, k1, 32)
	assert.Equal(t, k1, k2)

	k3 := DeriveSealKey(secret, []byte("different-salt16"))
	assert.NotEqual(t, k1, k3)
}

func TestSealOpenJSON_RoundTrip(t *testing.T) {
	key := DeriveSealKey([]byte("s"), []byte("salt"))
	in := payload{Token: "abc", N: 7}

	ct, nonce, err := SealJSON(in, key)
	require.NoError(t, err)
	require.Len(t, nonce, 12)
	require.NotEmpty(t, ct)

	var out payload
	require.NoError(t, OpenJSON(ct, nonce, key, &out))
	assert.Equal(t, in, out)
}

func TestOpenJSON_WrongKeyFails(t *testing.T) {
	key := DeriveSealKey([]byte("s"), []byte("salt"))
	ct, nonce, err := SealJSON(payload{Token: "abc"}, key)
	require.NoError(t, err)

	other := DeriveSealKey([]byte("x"), []byte("salt"))
	var out payload
	require.Error(t, OpenJSON(ct, nonce, other, &out))
}

func TestSealJSON_BadKeyLength(t *testing.T) {
	_, _, err := SealJSON(payload{}, []byte("short"))
	require.Error(t, err)
}
