/*
Package secrets provides a pluggable framework for loading secrets from multiple sources.

# Overview

The secrets package is how ledgerport obtains the Intuit OAuth client
credentials (client ID and client secret) without ever placing them in
configuration files. Secrets are loaded from environment variables or
from a directory of secret files, and cached in memory with TTL to
reduce backend calls.

# Secret Providers

Each backend implements the Provider interface, and providers can be
chained together with priority-based fallback:

  - EnvProvider: loads secrets from environment variables
  - FileProvider: loads secrets from individual files (Kubernetes-style)

# Basic Usage

Create a secret manager with multiple providers:

	import (
		"context"
		"time"

		"brightbooks-hq/ledgerport/pkg/security/secrets"
	)

	envProvider := secrets.NewEnvProvider("INTUIT_")
	fileProvider, _ := secrets.NewFileProvider("/var/secrets", true)

	manager := secrets.NewManager(
		[]secrets.Provider{fileProvider, envProvider},
		secrets.CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
			MaxSize: 100,
		},
	)

	clientID, err := manager.GetSecret(context.Background(), secrets.SecretClientID)
	if err != nil {
		log.Fatal(err)
	}

# Environment Variable Provider

The environment provider maps secret names to variable names by
uppercasing, replacing hyphens with underscores, and prepending the
configured prefix:

	provider := secrets.NewEnvProvider("INTUIT_")

	// Secret name "client_id" maps to env var "INTUIT_CLIENT_ID"
	value, err := provider.GetSecret(ctx, "client_id")

# File-Based Provider

The file provider reads each secret from its own file in a directory:

	provider, err := secrets.NewFileProvider("/var/secrets", true)
	if err != nil {
		log.Fatal(err)
	}
	defer provider.Close()

	// Secret name "client_secret" reads from "/var/secrets/client_secret"
	value, err := provider.GetSecret(ctx, "client_secret")

File-based features:

  - File permissions validation (0600 or 0400 only)
  - Optional file watching for auto-reload
  - Kubernetes-style secret mounting support
  - Automatic cache invalidation on file changes

# OAuth Client Credentials

Credentials adapts a manager to the interface the token manager
consumes. It fetches both values on every call, so rotation through a
watched secrets directory takes effect without a restart:

	creds := secrets.NewCredentials(manager)

	tokenManager, err := tokens.NewManager(tokens.Config{
		Credentials: creds,
		// ...
	})

# Provider Priority

When multiple providers are configured they are tried in order; the
first provider that supports the secret and successfully returns a
value wins. Putting the file provider first lets mounted secrets
override environment variables.

# Secret Rotation

Providers that implement RefreshableProvider can reload secrets without
a restart:

	if err := manager.Refresh(ctx); err != nil {
		slog.Error("failed to refresh secrets", "error", err)
	}

The file provider refreshes itself automatically when watching is
enabled.

# Security Considerations

Secret values are protected:

  - Never logged (secret names are redacted in logs)
  - Never included in error messages
  - File permissions validated (0600 or 0400 only)
  - Cached with TTL to bound the exposure window
  - Cleared from cache on refresh

# Thread Safety

All components are safe for concurrent use. The cache and the file
provider synchronize with sync.RWMutex, and the manager supports
concurrent GetSecret calls.
*/
package secrets
