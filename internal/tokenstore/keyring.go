package tokenstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const servicePrefix = "nexa-cli"

// Keyring stores values in the OS keychain/credential manager
type Keyring struct {
	service string
}

// NewKeyring returns a keyring backend scoped to one profile
func NewKeyring(profile string) *Keyring {
	return &Keyring{service: fmt.Sprintf("%s:%s", servicePrefix, profile)}
}

func (k *Keyring) Get(key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (k *Keyring) Set(key, value string) error {
	return keyring.Set(k.service, key, value)
}

func (k *Keyring) DeleteAll() error {
	if err := keyring.DeleteAll(k.service); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
