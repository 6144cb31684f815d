package credential

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useArrayKeyring(t *testing.T) keyring.Keyring {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	prev := open
	open = func() (keyring.Keyring, error) { return ring, nil }
	t.Cleanup(func() { open = prev })
	return ring
}

func TestTokenMissingIsEmpty(t *testing.T) {
	useArrayKeyring(t)

	token, err := Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSetTokenRoundTrip(t *testing.T) {
	useArrayKeyring(t)

	require.NoError(t, SetToken("  secret  "))
	token, err := Token()
	require.NoError(t, err)
	assert.Equal(t, "secret", token)

	require.NoError(t, SetToken(""))
	token, err = Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Deleting an absent token is fine.
	require.NoError(t, SetToken(""))
}

func TestOpenFailure(t *testing.T) {
	prev := open
	open = func() (keyring.Keyring, error) { return nil, errors.New("no backend") }
	t.Cleanup(func() { open = prev })

	_, err := Token()
	assert.Error(t, err)
	assert.Error(t, SetToken("x"))
}
