package tls

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// expiryWarningWindow is how close to NotAfter a certificate gets
// before startup logs a warning.
const expiryWarningWindow = 30 * 24 * time.Hour

// Leaf returns the parsed leaf certificate of a loaded key pair.
func Leaf(cert *tls.Certificate) (*x509.Certificate, error) {
	if cert == nil || len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("certificate chain is empty")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	return leaf, nil
}

// ValidateLeaf checks that the certificate is inside its validity
// window.
func ValidateLeaf(leaf *x509.Certificate) error {
	now := time.Now()
	if now.Before(leaf.NotBefore) {
		return fmt.Errorf("certificate not valid until %s", leaf.NotBefore.Format(time.RFC3339))
	}
	if now.After(leaf.NotAfter) {
		return fmt.Errorf("certificate expired on %s", leaf.NotAfter.Format(time.RFC3339))
	}
	return nil
}

// ExpiryWarning reports the days left before the certificate expires
// and a non-empty warning when that is under 30 days.
func ExpiryWarning(leaf *x509.Certificate) (daysLeft int, warning string) {
	remaining := time.Until(leaf.NotAfter)
	daysLeft = int(remaining.Hours() / 24)
	if remaining < expiryWarningWindow {
		warning = fmt.Sprintf("certificate expires in %d days (on %s)",
			daysLeft, leaf.NotAfter.Format("2006-01-02"))
	}
	return daysLeft, warning
}

// GenerateOptions controls self-signed certificate generation.
type GenerateOptions struct {
	// Hosts are the DNS names and IP addresses the certificate covers.
	// Defaults to localhost and 127.0.0.1.
	Hosts []string

	// Organization for the certificate subject. Defaults to
	// "BrightBooks".
	Organization string

	// ValidFor is the certificate lifetime. Defaults to 365 days.
	ValidFor time.Duration
}

// GenerateSelfSigned writes a self-signed certificate and key pair
// under dir as cert.pem and key.pem and returns their paths. The key
// file is written with mode 0600. Self-signed pairs are for local
// HTTPS testing only.
func GenerateSelfSigned(dir string, opts GenerateOptions) (certPath, keyPath string, err error) {
	hosts := opts.Hosts
	if len(hosts) == 0 {
		hosts = []string{"localhost", "127.0.0.1"}
	}
	org := opts.Organization
	if org == "" {
		org = "BrightBooks"
	}
	validFor := opts.ValidFor
	if validFor == 0 {
		validFor = 365 * 24 * time.Hour
	}

	var dnsNames []string
	var ipAddresses []net.IP
	for _, host := range hosts {
		if ip := net.ParseIP(host); ip != nil {
			ipAddresses = append(ipAddresses, ip)
		} else {
			dnsNames = append(dnsNames, host)
		}
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", "", fmt.Errorf("generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return "", "", fmt.Errorf("generate serial number: %w", err)
	}

	notBefore := time.Now()
	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{org},
			CommonName:   hosts[0],
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(validFor),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              dnsNames,
		IPAddresses:           ipAddresses,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return "", "", fmt.Errorf("create certificate: %w", err)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", "", fmt.Errorf("create output directory: %w", err)
	}

	certPath = filepath.Join(dir, "cert.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil {
		return "", "", fmt.Errorf("write certificate: %w", err)
	}

	keyPath = filepath.Join(dir, "key.pem")
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privateKey)})
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		return "", "", fmt.Errorf("write private key: %w", err)
	}

	return certPath, keyPath, nil
}
