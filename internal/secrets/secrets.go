// Package secrets reads credentials from the OS keychain so they stay
// out of config files.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const KeyringService = "jobscout"

// Get looks up a secret by keyring account name.
func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	v, err := keyring.Get(KeyringService, account)
	if err != nil {
		return "", fmt.Errorf("keyring get %q: %w", account, err)
	}
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("keyring entry %q is empty", account)
	}
	return v, nil
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// IMAPAccount is the conventional account name for the mail password.
func IMAPAccount(username, host string) string {
	return fmt.Sprintf("imap:%s@%s", username, host)
}

// AIAccount is the conventional account name for the extraction API key.
func AIAccount(model string) string {
	return fmt.Sprintf("ai:%s", model)
}
