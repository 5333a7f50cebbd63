// Package secrets resolves credentials, preferring environment variables
// and falling back to the OS keychain.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the app's secrets in the OS keychain.
const KeyringService = "applyflow"

// Secret names. The environment variable doubles as the keyring account.
const (
	AnthropicAPIKey = "ANTHROPIC_API_KEY"
	NotionAPIKey    = "NOTION_API_KEY"
	IMAPPassword    = "IMAP_PASSWORD"
)

// Get returns the named secret: the environment variable when set,
// otherwise the keychain entry under the applyflow service.
func Get(name string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, nil
	}
	pw, err := keyring.Get(KeyringService, name)
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	return "", fmt.Errorf("secret %s not found (export it or run: applyflow secrets set %s)", name, name)
}

// GetOptional is Get for secrets the pipeline can run without; it returns
// "" instead of an error.
func GetOptional(name string) string {
	v, err := Get(name)
	if err != nil {
		return ""
	}
	return v
}

// Set stores the secret in the keychain.
func Set(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, name, value)
}

// Delete removes the secret from the keychain.
func Delete(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	return keyring.Delete(KeyringService, name)
}
