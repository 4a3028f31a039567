// Package secrets keeps mail credentials in the OS keychain so they
// never land in the config file.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"jobpilot-engine/internal/config"
)

const KeyringService = "jobpilot"

func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	pw, err := keyring.Get(KeyringService, account)
	if err != nil {
		return "", fmt.Errorf("secret for %s not found: %w", account, err)
	}
	if strings.TrimSpace(pw) == "" {
		return "", fmt.Errorf("secret for %s is empty", account)
	}
	return pw, nil
}

func Set(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// IMAPAccount names the inbox-watcher credential for a config.
func IMAPAccount(cfg config.Config) string {
	return fmt.Sprintf("jobpilot:imap:%s@%s", cfg.Tracker.Username, cfg.Tracker.IMAPHost)
}

// SMTPAccount names the outgoing-mail credential for a config.
func SMTPAccount(cfg config.Config) string {
	return fmt.Sprintf("jobpilot:smtp:%s@%s", cfg.Dispatch.SMTPUsername, cfg.Dispatch.SMTPHost)
}
