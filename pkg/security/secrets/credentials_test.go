package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"brightbooks-hq/ledgerport/pkg/tokens"
)

// The adapter must satisfy the token manager's credentials interface.
var _ tokens.CredentialsSource = (*Credentials)(nil)

func TestCredentials_FromEnv(t *testing.T) {
	os.Setenv("INTUIT_CLIENT_ID", "ab-test-id")
	os.Setenv("INTUIT_CLIENT_SECRET", "ab-test-secret")
	defer func() {
		os.Unsetenv("INTUIT_CLIENT_ID")
		os.Unsetenv("INTUIT_CLIENT_SECRET")
	}()

	manager := NewManager(
		[]Provider{NewEnvProvider("INTUIT_")},
		CacheConfig{Enabled: false},
	)

	creds := NewCredentials(manager)

	clientID, clientSecret, err := creds.Credentials(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if clientID != "ab-test-id" {
		t.Errorf("expected client ID 'ab-test-id', got '%s'", clientID)
	}

	if clientSecret != "ab-test-secret" {
		t.Errorf("expected client secret 'ab-test-secret', got '%s'", clientSecret)
	}
}

func TestCredentials_FromFiles(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, SecretClientID), []byte("file-id\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, SecretClientSecret), []byte("file-secret\n"), 0600); err != nil {
		t.Fatal(err)
	}

	fileProvider, err := NewFileProvider(tmpDir, false)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer fileProvider.Close()

	manager := NewManager(
		[]Provider{fileProvider},
		CacheConfig{Enabled: false},
	)

	creds := NewCredentials(manager)

	clientID, clientSecret, err := creds.Credentials(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if clientID != "file-id" {
		t.Errorf("expected client ID 'file-id', got '%s'", clientID)
	}

	if clientSecret != "file-secret" {
		t.Errorf("expected client secret 'file-secret', got '%s'", clientSecret)
	}
}

func TestCredentials_MissingClientID(t *testing.T) {
	manager := NewManager(
		[]Provider{NewEnvProvider("LEDGERPORT_CREDS_")},
		CacheConfig{Enabled: false},
	)

	creds := NewCredentials(manager)

	_, _, err := creds.Credentials(context.Background())
	if err == nil {
		t.Fatal("expected error when client ID is missing, got nil")
	}

	if !strings.Contains(err.Error(), "client id") {
		t.Errorf("expected error to name the client id, got: %v", err)
	}
}

func TestCredentials_MissingClientSecret(t *testing.T) {
	os.Setenv("LEDGERPORT_CREDS_CLIENT_ID", "present-id")
	defer os.Unsetenv("LEDGERPORT_CREDS_CLIENT_ID")

	manager := NewManager(
		[]Provider{NewEnvProvider("LEDGERPORT_CREDS_")},
		CacheConfig{Enabled: false},
	)

	creds := NewCredentials(manager)

	_, _, err := creds.Credentials(context.Background())
	if err == nil {
		t.Fatal("expected error when client secret is missing, got nil")
	}

	if !strings.Contains(err.Error(), "client secret") {
		t.Errorf("expected error to name the client secret, got: %v", err)
	}

	// The error must not disclose the value that was found.
	if strings.Contains(err.Error(), "present-id") {
		t.Errorf("error leaked a credential value: %v", err)
	}
}

func TestCredentials_SourceError(t *testing.T) {
	creds := NewCredentials(failingGetter{err: errors.New("backend unavailable")})

	_, _, err := creds.Credentials(context.Background())
	if err == nil {
		t.Fatal("expected error from failing source, got nil")
	}

	if !strings.Contains(err.Error(), "backend unavailable") {
		t.Errorf("expected wrapped source error, got: %v", err)
	}
}

func TestCredentials_RotationWithoutRestart(t *testing.T) {
	tmpDir := t.TempDir()

	idPath := filepath.Join(tmpDir, SecretClientID)
	secretPath := filepath.Join(tmpDir, SecretClientSecret)

	if err := os.WriteFile(idPath, []byte("old-id"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(secretPath, []byte("old-secret"), 0600); err != nil {
		t.Fatal(err)
	}

	fileProvider, err := NewFileProvider(tmpDir, false)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer fileProvider.Close()

	manager := NewManager(
		[]Provider{fileProvider},
		CacheConfig{Enabled: false},
	)

	creds := NewCredentials(manager)

	clientID, _, err := creds.Credentials(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clientID != "old-id" {
		t.Errorf("expected client ID 'old-id', got '%s'", clientID)
	}

	// Rotate both files, then refresh the providers.
	if err := os.WriteFile(idPath, []byte("new-id"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(secretPath, []byte("new-secret"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := manager.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clientID, clientSecret, err := creds.Credentials(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if clientID != "new-id" {
		t.Errorf("expected rotated client ID 'new-id', got '%s'", clientID)
	}
	if clientSecret != "new-secret" {
		t.Errorf("expected rotated client secret 'new-secret', got '%s'", clientSecret)
	}
}

type failingGetter struct {
	err error
}

func (g failingGetter) GetSecret(ctx context.Context, name string) (string, error) {
	return "", g.err
}
