package tls

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
)

// Config describes the certificate material for the HTTPS listener.
type Config struct {
	// CertFile is the path to the PEM-encoded certificate.
	CertFile string

	// KeyFile is the path to the PEM-encoded private key.
	KeyFile string

	// MinVersion is the minimum TLS version to accept, "1.2" or "1.3".
	// Defaults to "1.3".
	MinVersion string
}

// ServerConfig loads the certificate pair and builds the crypto/tls
// configuration for the HTTP server. The certificate must be inside its
// validity window; one expiring within 30 days logs a warning.
func (c Config) ServerConfig() (*tls.Config, error) {
	if c.CertFile == "" {
		return nil, fmt.Errorf("cert file not specified")
	}
	if c.KeyFile == "" {
		return nil, fmt.Errorf("key file not specified")
	}
	if _, err := os.Stat(c.CertFile); err != nil {
		return nil, fmt.Errorf("cert file: %w", err)
	}
	if _, err := os.Stat(c.KeyFile); err != nil {
		return nil, fmt.Errorf("key file: %w", err)
	}

	minVersion, err := c.parseMinVersion()
	if err != nil {
		return nil, err
	}

	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load key pair: %w", err)
	}

	leaf, err := Leaf(&cert)
	if err != nil {
		return nil, err
	}
	if err := ValidateLeaf(leaf); err != nil {
		return nil, err
	}
	if days, warning := ExpiryWarning(leaf); warning != "" {
		slog.Warn("serving certificate expires soon",
			"days_left", days,
			"cert_file", c.CertFile)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion,
	}, nil
}

func (c Config) parseMinVersion() (uint16, error) {
	switch c.MinVersion {
	case "", "1.3":
		return tls.VersionTLS13, nil
	case "1.2":
		return tls.VersionTLS12, nil
	default:
		return 0, fmt.Errorf("unsupported minimum TLS version %q (use \"1.2\" or \"1.3\")", c.MinVersion)
	}
}
