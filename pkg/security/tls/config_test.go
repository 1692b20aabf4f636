package tls

import (
	"crypto/tls"
	"strings"
	"testing"
	"time"
)

func TestServerConfig(t *testing.T) {
	certPath, keyPath, err := GenerateSelfSigned(t.TempDir(), GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}

	cfg := Config{CertFile: certPath, KeyFile: keyPath}
	tlsConfig, err := cfg.ServerConfig()
	if err != nil {
		t.Fatalf("ServerConfig() error = %v", err)
	}

	if tlsConfig.MinVersion != tls.VersionTLS13 {
		t.Errorf("MinVersion = %x, want %x", tlsConfig.MinVersion, tls.VersionTLS13)
	}
	if len(tlsConfig.Certificates) != 1 {
		t.Errorf("Certificates = %d, want 1", len(tlsConfig.Certificates))
	}
}

func TestServerConfigMinVersion(t *testing.T) {
	certPath, keyPath, err := GenerateSelfSigned(t.TempDir(), GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}

	tests := []struct {
		name       string
		minVersion string
		want       uint16
		wantErr    bool
	}{
		{name: "default", minVersion: "", want: tls.VersionTLS13},
		{name: "explicit 1.3", minVersion: "1.3", want: tls.VersionTLS13},
		{name: "downgrade to 1.2", minVersion: "1.2", want: tls.VersionTLS12},
		{name: "unsupported 1.1", minVersion: "1.1", wantErr: true},
		{name: "garbage", minVersion: "latest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{CertFile: certPath, KeyFile: keyPath, MinVersion: tt.minVersion}
			tlsConfig, err := cfg.ServerConfig()
			if tt.wantErr {
				if err == nil {
					t.Fatal("ServerConfig() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ServerConfig() error = %v", err)
			}
			if tlsConfig.MinVersion != tt.want {
				t.Errorf("MinVersion = %x, want %x", tlsConfig.MinVersion, tt.want)
			}
		})
	}
}

func TestServerConfigMissingPaths(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no cert file", cfg: Config{KeyFile: "key.pem"}},
		{name: "no key file", cfg: Config{CertFile: "cert.pem"}},
		{name: "cert file absent", cfg: Config{CertFile: "does/not/exist.pem", KeyFile: "key.pem"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.ServerConfig(); err == nil {
				t.Error("ServerConfig() error = nil, want error")
			}
		})
	}
}

func TestServerConfigExpiredCertificate(t *testing.T) {
	certPath, keyPath, err := GenerateSelfSigned(t.TempDir(), GenerateOptions{
		ValidFor: -time.Hour,
	})
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}

	cfg := Config{CertFile: certPath, KeyFile: keyPath}
	_, err = cfg.ServerConfig()
	if err == nil {
		t.Fatal("ServerConfig() error = nil, want expiry error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Errorf("error = %v, want mention of expiry", err)
	}
}

func TestServerConfigMismatchedPair(t *testing.T) {
	dir := t.TempDir()
	certPath, _, err := GenerateSelfSigned(dir+"/a", GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}
	_, otherKeyPath, err := GenerateSelfSigned(dir+"/b", GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}

	cfg := Config{CertFile: certPath, KeyFile: otherKeyPath}
	if _, err := cfg.ServerConfig(); err == nil {
		t.Error("ServerConfig() error = nil, want key mismatch error")
	}
}
