/*
Package security groups the secret management and transport security
subpackages.

# Secret Management

The secrets subpackage resolves the Intuit OAuth client credentials
from environment variables or watched files:

	manager := secrets.NewManager([]secrets.Provider{
		secrets.NewEnvProvider("INTUIT_"),
	}, cacheConfig)

	clientID, err := manager.GetSecret(ctx, secrets.SecretClientID)

# Transport Security

The tls subpackage builds the crypto/tls configuration for the HTTPS
listener from the configured certificate pair, and can generate
self-signed pairs for local testing.
*/
package security
