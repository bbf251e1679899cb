package keychain

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

var (
	// ErrPepperNotFound is returned when no pepper is stored for an account
	ErrPepperNotFound = errors.New("no pepper found in keychain")
	// ErrEmptyPepper is returned when asked to store an empty pepper
	ErrEmptyPepper = errors.New("pepper must not be empty")
	// ErrEmptyAccount is returned when the account name is empty
	ErrEmptyAccount = errors.New("account name must not be empty")
)

// Keychain stores peppers in the OS keychain under one service name
type Keychain struct {
	service string
}

// New creates a Keychain for the given service
func New(service string) *Keychain {
	return &Keychain{service: service}
}

// Available checks if the OS keychain is available
func (k *Keychain) Available() bool {
	// ErrNotFound means the keychain works but the entry doesn't exist
	_, err := keyring.Get(k.service, "__probe__")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// StorePepper stores pepper for account, replacing any previous value
func (k *Keychain) StorePepper(account, pepper string) error {
	if account == "" {
		return ErrEmptyAccount
	}
	if pepper == "" {
		return ErrEmptyPepper
	}
	if err := keyring.Set(k.service, account, pepper); err != nil {
		return fmt.Errorf("failed to store pepper in keychain: %w", err)
	}
	return nil
}

// Pepper retrieves the pepper stored for account
func (k *Keychain) Pepper(account string) (string, error) {
	if account == "" {
		return "", ErrEmptyAccount
	}
	pepper, err := keyring.Get(k.service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: account %q", ErrPepperNotFound, account)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get pepper from keychain: %w", err)
	}
	return pepper, nil
}

// DeletePepper removes the pepper stored for account
func (k *Keychain) DeletePepper(account string) error {
	if account == "" {
		return ErrEmptyAccount
	}
	err := keyring.Delete(k.service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil // Already deleted, not an error
	}
	if err != nil {
		return fmt.Errorf("failed to delete pepper from keychain: %w", err)
	}
	return nil
}

// HasPepper checks if a pepper is stored for account
func (k *Keychain) HasPepper(account string) bool {
	_, err := k.Pepper(account)
	return err == nil
}
