package secrets

import (
	"context"
	"fmt"
)

// Names under which the OAuth client credentials are looked up. With the
// env provider and prefix "INTUIT_" these resolve to INTUIT_CLIENT_ID and
// INTUIT_CLIENT_SECRET; with the file provider they are the filenames
// inside the secrets directory.
const (
	SecretClientID     = "client_id"
	SecretClientSecret = "client_secret"
)

// Getter is the lookup surface of Manager that Credentials needs.
type Getter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Credentials exposes the OAuth client ID and secret held by a secret
// manager in the shape the token manager consumes. Values are fetched
// on every call, so provider refreshes take effect without a restart.
type Credentials struct {
	source Getter
}

// NewCredentials creates a credentials source backed by the given
// secret manager or provider.
func NewCredentials(source Getter) *Credentials {
	return &Credentials{
		source: source,
	}
}

// Credentials returns the current client ID and client secret.
//
// Errors carry the secret name only, never the value.
func (c *Credentials) Credentials(ctx context.Context) (string, string, error) {
	clientID, err := c.source.GetSecret(ctx, SecretClientID)
	if err != nil {
		return "", "", fmt.Errorf("load client id: %w", err)
	}

	clientSecret, err := c.source.GetSecret(ctx, SecretClientSecret)
	if err != nil {
		return "", "", fmt.Errorf("load client secret: %w", err)
	}

	return clientID, clientSecret, nil
}
