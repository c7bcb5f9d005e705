package auth

import (
	"os"
	"path/filepath"
	"testing"
)

// Force the file fallback so tests never touch a real keyring, and point the
// home directory at a temp dir so nothing leaks between runs.
func setupFileStorage(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("CI", "1")
	fileBasedStorageCache = nil
	t.Cleanup(func() { fileBasedStorageCache = nil })
}

func TestEnvTakesPrecedence(t *testing.T) {
	setupFileStorage(t)
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvAPIKeyAlt, "from-alt-env")

	if got := LoadAPIKey(); got != "from-env" {
		t.Errorf("want env key, got %q", got)
	}

	t.Setenv(EnvAPIKey, "")
	if got := LoadAPIKey(); got != "from-alt-env" {
		t.Errorf("want alt env key, got %q", got)
	}
}

func TestSaveLoadDeleteRoundTrip(t *testing.T) {
	setupFileStorage(t)
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIKeyAlt, "")

	if got := LoadAPIKey(); got != "" {
		t.Fatalf("expected no key before save, got %q", got)
	}

	if err := SaveAPIKey("  secret-key\n"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := LoadAPIKey(); got != "secret-key" {
		t.Errorf("want trimmed key, got %q", got)
	}

	// Credential file must not be world readable.
	home, _ := os.UserHomeDir()
	info, err := os.Stat(filepath.Join(home, FallbackDir, "credentials"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0077 != 0 {
		t.Errorf("credential file too permissive: %v", info.Mode())
	}

	if err := DeleteAPIKey(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := LoadAPIKey(); got != "" {
		t.Errorf("key should be gone, got %q", got)
	}
	// Deleting again is not an error.
	if err := DeleteAPIKey(); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestSaveRejectsEmptyKey(t *testing.T) {
	setupFileStorage(t)
	if err := SaveAPIKey("   "); err == nil {
		t.Error("expected error for blank key")
	}
}
