package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "checkin"

// APITokenKey is the keyring key of the optional API bearer token.
const APITokenKey = "api-token"

// open is swapped in tests.
var open = openKeyring

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/checkin/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("checkin-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "Daily check-in " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := open()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// Token returns the stored API token. A missing token is not an error and
// yields "".
func Token() (string, error) {
	token, err := Get(APITokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetToken stores token, or removes the stored one when token is blank.
func SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return Delete(APITokenKey)
	}
	return Set(APITokenKey, token)
}
