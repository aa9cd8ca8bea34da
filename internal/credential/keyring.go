// Package credential keeps the ticket service's bearer token in the
// system keyring.
package credential

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const (
	// DefaultTokenKey is the keyring entry used when the config names none.
	DefaultTokenKey = "service-token"

	// TokenEnv overrides whatever the keyring holds.
	TokenEnv = "TICKETBOARD_TOKEN"

	ringName  = "ticketboard"
	itemLabel = "Ticket board service token"
)

// ErrNoToken is returned when the keyring has no token under the key.
var ErrNoToken = errors.New("no service token stored")

var openRing = func() (keyring.Keyring, error) {
	return keyring.Open(keyring.Config{
		ServiceName: ringName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/ticketboard/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("ticketboard-file-key"),
		KeychainTrustApplication: true,
	})
}

// withRing opens the keyring and runs fn against it.
func withRing(fn func(keyring.Keyring) error) error {
	ring, err := openRing()
	if err != nil {
		return fmt.Errorf("opening keyring: %w", err)
	}
	return fn(ring)
}

// TokenKey returns key, or DefaultTokenKey when key is empty.
func TokenKey(key string) string {
	if key == "" {
		return DefaultTokenKey
	}
	return key
}

// LoadToken reads the token stored under key.
func LoadToken(key string) (string, error) {
	key = TokenKey(key)
	var token string
	err := withRing(func(ring keyring.Keyring) error {
		item, err := ring.Get(key)
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("token %q: %w", key, ErrNoToken)
		}
		if err != nil {
			return fmt.Errorf("reading token %q: %w", key, err)
		}
		token = string(item.Data)
		return nil
	})
	return token, err
}

// SaveToken stores token under key, replacing any previous value.
func SaveToken(key, token string) error {
	key = TokenKey(key)
	return withRing(func(ring keyring.Keyring) error {
		err := ring.Set(keyring.Item{Key: key, Data: []byte(token), Label: itemLabel})
		if err != nil {
			return fmt.Errorf("saving token %q: %w", key, err)
		}
		return nil
	})
}

// ForgetToken removes the token stored under key. A missing token is not
// an error.
func ForgetToken(key string) error {
	key = TokenKey(key)
	return withRing(func(ring keyring.Keyring) error {
		err := ring.Remove(key)
		if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("removing token %q: %w", key, err)
		}
		return nil
	})
}

// ResolveToken returns the bearer token for the ticket service.
// TICKETBOARD_TOKEN wins; otherwise the keyring entry named key is used.
// An empty key means the service needs no token.
func ResolveToken(key string) (string, error) {
	if token := os.Getenv(TokenEnv); token != "" {
		return token, nil
	}
	if key == "" {
		return "", nil
	}
	return LoadToken(key)
}
