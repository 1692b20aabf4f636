package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManager_GetSecret_FromEnv(t *testing.T) {
	os.Setenv("LEDGERPORT_MGR_TEST_KEY", "env-value")
	defer os.Unsetenv("LEDGERPORT_MGR_TEST_KEY")

	envProvider := NewEnvProvider("LEDGERPORT_MGR_")
	manager := NewManager(
		[]Provider{envProvider},
		CacheConfig{Enabled: false},
	)

	value, err := manager.GetSecret(context.Background(), "test_key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if value != "env-value" {
		t.Errorf("expected value 'env-value', got '%s'", value)
	}
}

func TestManager_GetSecret_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	secretPath := filepath.Join(tmpDir, "file_secret")
	if err := os.WriteFile(secretPath, []byte("file-value"), 0600); err != nil {
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

	value, err := manager.GetSecret(context.Background(), "file_secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if value != "file-value" {
		t.Errorf("expected value 'file-value', got '%s'", value)
	}
}

func TestManager_GetSecret_ProviderPriority(t *testing.T) {
	os.Setenv("LEDGERPORT_MGR_SHARED_KEY", "env-value")
	defer os.Unsetenv("LEDGERPORT_MGR_SHARED_KEY")

	// Same secret also exists as a file with a different value.
	tmpDir := t.TempDir()
	secretPath := filepath.Join(tmpDir, "shared_key")
	if err := os.WriteFile(secretPath, []byte("file-value"), 0600); err != nil {
		t.Fatal(err)
	}

	envProvider := NewEnvProvider("LEDGERPORT_MGR_")
	fileProvider, _ := NewFileProvider(tmpDir, false)
	defer fileProvider.Close()

	// Env provider first, so it wins.
	manager := NewManager(
		[]Provider{envProvider, fileProvider},
		CacheConfig{Enabled: false},
	)

	value, err := manager.GetSecret(context.Background(), "shared_key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if value != "env-value" {
		t.Errorf("expected value from first provider 'env-value', got '%s'", value)
	}

	// Reversed order, the file provider wins.
	manager2 := NewManager(
		[]Provider{fileProvider, envProvider},
		CacheConfig{Enabled: false},
	)

	value2, err := manager2.GetSecret(context.Background(), "shared_key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if value2 != "file-value" {
		t.Errorf("expected value from first provider 'file-value', got '%s'", value2)
	}
}

func TestManager_GetSecret_NotFound(t *testing.T) {
	envProvider := NewEnvProvider("LEDGERPORT_MGR_")
	manager := NewManager(
		[]Provider{envProvider},
		CacheConfig{Enabled: false},
	)

	_, err := manager.GetSecret(context.Background(), "nonexistent_key")
	if err == nil {
		t.Error("expected error for nonexistent secret, got nil")
	}
}

func TestManager_GetSecret_Caching(t *testing.T) {
	os.Setenv("LEDGERPORT_MGR_CACHED_KEY", "original-value")
	defer os.Unsetenv("LEDGERPORT_MGR_CACHED_KEY")

	envProvider := NewEnvProvider("LEDGERPORT_MGR_")
	manager := NewManager(
		[]Provider{envProvider},
		CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
			MaxSize: 10,
		},
	)

	value1, err := manager.GetSecret(context.Background(), "cached_key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Change the variable behind the cache.
	os.Setenv("LEDGERPORT_MGR_CACHED_KEY", "new-value")

	value2, err := manager.GetSecret(context.Background(), "cached_key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if value2 != value1 {
		t.Error("expected cached value to be returned")
	}

	if value2 != "original-value" {
		t.Errorf("expected cached value 'original-value', got '%s'", value2)
	}
}

func TestManager_Refresh(t *testing.T) {
	tmpDir := t.TempDir()
	secretPath := filepath.Join(tmpDir, "refresh_test")
	if err := os.WriteFile(secretPath, []byte("value1"), 0600); err != nil {
		t.Fatal(err)
	}

	fileProvider, err := NewFileProvider(tmpDir, false)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer fileProvider.Close()

	manager := NewManager(
		[]Provider{fileProvider},
		CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
			MaxSize: 10,
		},
	)

	value1, err := manager.GetSecret(context.Background(), "refresh_test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.WriteFile(secretPath, []byte("value2"), 0600); err != nil {
		t.Fatal(err)
	}

	// Still cached.
	value2, err := manager.GetSecret(context.Background(), "refresh_test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if value2 != value1 {
		t.Error("expected cached value before refresh")
	}

	if err := manager.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value3, err := manager.GetSecret(context.Background(), "refresh_test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if value3 != "value2" {
		t.Errorf("expected new value 'value2' after refresh, got '%s'", value3)
	}
}

func TestManager_ListSecrets(t *testing.T) {
	os.Setenv("LEDGERPORT_MGR_ENV_SECRET", "value1")
	defer os.Unsetenv("LEDGERPORT_MGR_ENV_SECRET")

	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "file_secret"), []byte("value2"), 0600); err != nil {
		t.Fatal(err)
	}

	envProvider := NewEnvProvider("LEDGERPORT_MGR_")
	fileProvider, err := NewFileProvider(tmpDir, false)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer fileProvider.Close()

	manager := NewManager(
		[]Provider{envProvider, fileProvider},
		CacheConfig{Enabled: false},
	)

	names, err := manager.ListSecrets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nameMap := make(map[string]bool)
	for _, name := range names {
		nameMap[name] = true
	}

	if !nameMap["env_secret"] {
		t.Error("expected 'env_secret' in list")
	}

	if !nameMap["file_secret"] {
		t.Error("expected 'file_secret' in list")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	os.Setenv("LEDGERPORT_MGR_CONCURRENT", "value")
	defer os.Unsetenv("LEDGERPORT_MGR_CONCURRENT")

	envProvider := NewEnvProvider("LEDGERPORT_MGR_")
	manager := NewManager(
		[]Provider{envProvider},
		CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
			MaxSize: 100,
		},
	)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_, err := manager.GetSecret(context.Background(), "concurrent")
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestManager_RedactSecretName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "long name",
			input:    "client_secret",
			expected: "cl...et",
		},
		{
			name:     "short name",
			input:    "key",
			expected: "***",
		},
		{
			name:     "four characters",
			input:    "abcd",
			expected: "***",
		},
		{
			name:     "five characters",
			input:    "abcde",
			expected: "ab...de",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := redactSecretName(tt.input)
			if result != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}
