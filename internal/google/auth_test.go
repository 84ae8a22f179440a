package google

import (
	"os"
	"path/filepath"
	"testing"
)

func TestServiceOptions(t *testing.T) {
	credsFile := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(credsFile, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("failed to write credentials file: %v", err)
	}

	opts, err := ServiceOptions(credsFile)
	if err != nil {
		t.Fatalf("ServiceOptions returned error: %v", err)
	}
	// Credentials option plus scopes option.
	if len(opts) != 2 {
		t.Errorf("got %d options, want 2", len(opts))
	}
}

func TestServiceOptions_MissingFile(t *testing.T) {
	if _, err := ServiceOptions(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("ServiceOptions succeeded, want error for missing file")
	}
}

func TestServiceOptions_Unconfigured(t *testing.T) {
	if _, err := ServiceOptions(""); err == nil {
		t.Fatal("ServiceOptions succeeded, want error for empty path")
	}
}
