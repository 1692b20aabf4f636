/*
Package tls builds the server-side TLS configuration for the HTTPS
listener.

Intuit only registers https:// redirect URIs for production apps, so
deployments that terminate TLS in the service itself enable it here:

	cfg := tls.Config{
		CertFile: "/etc/ledgerport/certs/server.crt",
		KeyFile:  "/etc/ledgerport/certs/server.key",
	}

	tlsConfig, err := cfg.ServerConfig()
	if err != nil {
		return err
	}

The minimum accepted version defaults to TLS 1.3. Expired or not yet
valid certificates are rejected at startup rather than at the first
handshake, and a certificate inside its last 30 days logs a warning.

GenerateSelfSigned writes a throwaway certificate pair for exercising
the HTTPS path locally. Production deployments use CA-issued
certificates.
*/
package tls
