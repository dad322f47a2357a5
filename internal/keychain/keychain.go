package keychain

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "clipbot"

	// TokenAccount is the account under which the bot token is stored.
	TokenAccount = "bot_token"
)

// Get retrieves a secret from the system keychain. A missing entry is
// reported as an empty string with no error.
func Get(account string) (string, error) {
	v, err := keyring.Get(serviceName, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// Set stores a secret in the system keychain.
func Set(account, value string) error {
	return keyring.Set(serviceName, account, value)
}
