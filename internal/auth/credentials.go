// Package auth stores the Gemini API key in the OS keyring, with a
// file fallback for environments without one (containers, CI).
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "scrapply-cli"
	keyringAccount = "gemini-api-key"
	// FallbackDir holds the credential file when the keyring is unavailable
	FallbackDir = ".scrapply"
	// EnvAPIKey and EnvAPIKeyAlt are checked before any stored credential
	EnvAPIKey    = "SCRAPPLY_GEMINI_API_KEY"
	EnvAPIKeyAlt = "GEMINI_API_KEY"
)

// useFileBasedStorage checks if we should use file-based storage.
// Cached because probing the keyring can prompt on some desktops.
var fileBasedStorageCache *bool

func useFileBasedStorage() bool {
	if fileBasedStorageCache != nil {
		return *fileBasedStorageCache
	}

	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		result := true
		fileBasedStorageCache = &result
		return true
	}

	testKey := "_test_keyring_access_"
	err := keyring.Set(KeyringService, testKey, "test")
	result := (err != nil)
	fileBasedStorageCache = &result

	if !result {
		keyring.Delete(KeyringService, testKey)
	}

	return result
}

func credentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, FallbackDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials"), nil
}

// SaveAPIKey persists the API key for later runs.
func SaveAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	if useFileBasedStorage() {
		path, err := credentialPath()
		if err != nil {
			return fmt.Errorf("failed to resolve credential path: %w", err)
		}
		if err := os.WriteFile(path, []byte(key), 0600); err != nil {
			return fmt.Errorf("failed to save credential file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(KeyringService, keyringAccount, key); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// LoadAPIKey resolves the API key: environment first, then the stored
// credential. An empty string means no key is configured.
func LoadAPIKey() string {
	if v := os.Getenv(EnvAPIKey); v != "" {
		return v
	}
	if v := os.Getenv(EnvAPIKeyAlt); v != "" {
		return v
	}

	if useFileBasedStorage() {
		path, err := credentialPath()
		if err != nil {
			return ""
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(data))
	}

	key, err := keyring.Get(KeyringService, keyringAccount)
	if err != nil {
		return ""
	}
	return key
}

// DeleteAPIKey removes the stored credential.
func DeleteAPIKey() error {
	if useFileBasedStorage() {
		path, err := credentialPath()
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete credential file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, keyringAccount); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
