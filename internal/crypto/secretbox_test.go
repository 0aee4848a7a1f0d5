package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretRoundTrip(t *testing.T) {
	blob, err := EncryptSecret("123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11", "correct horse")
	require.NoError(t, err)

	secret, err := DecryptSecret(blob, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11", secret)
}

func TestDecryptWithWrongPasswordFails(t *testing.T) {
	blob, err := EncryptSecret("token", "right")
	require.NoError(t, err)

	_, err = DecryptSecret(blob, "wrong")
	assert.Error(t, err)
}

func TestEncryptRejectsEmptyInputs(t *testing.T) {
	_, err := EncryptSecret("", "password")
	assert.Error(t, err)
	_, err = EncryptSecret("token", "")
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := DecryptSecret([]byte("not json"), "password")
	assert.Error(t, err)

	_, err = DecryptSecret([]byte(`{"version": 99}`), "password")
	assert.Error(t, err)
}
