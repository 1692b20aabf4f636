// Package secrets loads the Intuit OAuth client credentials from pluggable backends.
package secrets

import "context"

// Provider retrieves secrets from a backend.
//
// Implementations cover environment variables and directories of secret
// files. Providers can be chained together with priority-based fallback
// through the Manager.
type Provider interface {
	// GetSecret retrieves a secret by name.
	// Returns an error if the secret is not found or cannot be read.
	GetSecret(ctx context.Context, name string) (string, error)

	// ListSecrets returns all secret names available from this provider.
	// Values are never included.
	ListSecrets(ctx context.Context) ([]string, error)

	// Name returns the provider name ("env" or "file").
	Name() string

	// Supports reports whether this provider can serve the given secret.
	// The Manager skips providers that cannot.
	Supports(name string) bool
}

// RefreshableProvider can reload secrets without a restart.
//
// Implemented by providers that support rotation, such as the file
// provider which watches its directory for changes.
type RefreshableProvider interface {
	Provider

	// Refresh drops any cached values so the next read hits the backend.
	Refresh(ctx context.Context) error
}
