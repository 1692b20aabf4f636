package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Manager chains multiple secret providers with priority-based fallback.
//
// Providers are tried in order until one returns a value. Results are
// cached to keep repeated credential lookups off the backends.
type Manager struct {
	providers []Provider
	cache     *Cache
}

// NewManager creates a secret manager with the given providers and cache
// configuration.
//
// Providers are tried in the order given. The first provider that
// supports a secret and successfully returns a value wins.
func NewManager(providers []Provider, cacheConfig CacheConfig) *Manager {
	return &Manager{
		providers: providers,
		cache:     NewCache(cacheConfig),
	}
}

// GetSecret retrieves a secret from the first provider that can serve it.
//
// The cache is checked first, then each provider in order. A value
// successfully returned by a provider is cached before being returned.
//
// Returns an error if no provider supports the secret or all of them fail.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	if value, ok := m.cache.Get(name); ok {
		slog.Debug("secret cache hit", "name", redactSecretName(name))
		return value, nil
	}

	slog.Debug("secret cache miss", "name", redactSecretName(name))

	var lastErr error
	for _, provider := range m.providers {
		if !provider.Supports(name) {
			continue
		}

		slog.Debug("trying secret provider",
			"provider", provider.Name(),
			"name", redactSecretName(name),
		)

		value, err := provider.GetSecret(ctx, name)
		if err != nil {
			lastErr = err
			slog.Debug("provider failed to get secret",
				"provider", provider.Name(),
				"name", redactSecretName(name),
				"error", err,
			)
			continue
		}

		m.cache.Set(name, value)

		slog.Debug("secret retrieved",
			"provider", provider.Name(),
			"name", redactSecretName(name),
		)

		return value, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", name, lastErr)
	}

	return "", fmt.Errorf("secret not found: %q (no provider supports this secret)", name)
}

// Refresh reloads all refreshable providers and clears the cache.
//
// Called when credentials are rotated so new values are picked up
// without a restart.
func (m *Manager) Refresh(ctx context.Context) error {
	slog.Info("refreshing secrets from all providers")

	var errs []string
	for _, provider := range m.providers {
		refreshable, ok := provider.(RefreshableProvider)
		if !ok {
			continue
		}

		slog.Debug("refreshing provider", "provider", provider.Name())

		if err := refreshable.Refresh(ctx); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", provider.Name(), err))
			slog.Error("failed to refresh provider",
				"provider", provider.Name(),
				"error", err,
			)
		}
	}

	m.cache.Clear()
	slog.Debug("secret cache cleared")

	if len(errs) > 0 {
		return fmt.Errorf("failed to refresh some providers: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ListSecrets returns the union of secret names across all providers.
// Values are never included.
func (m *Manager) ListSecrets(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	for _, provider := range m.providers {
		names, err := provider.ListSecrets(ctx)
		if err != nil {
			slog.Warn("failed to list secrets from provider",
				"provider", provider.Name(),
				"error", err,
			)
			continue
		}

		for _, name := range names {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	return names, nil
}

// redactSecretName returns a redacted form of a secret name for logging.
// Only the first two and last two characters survive.
func redactSecretName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
