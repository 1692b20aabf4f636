package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider loads secrets from environment variables.
//
// Secret names are converted to uppercase variable names with hyphens
// replaced by underscores, then the configured prefix is prepended.
//
// Example:
//   - Secret name: "client_id"
//   - Env var name: "INTUIT_CLIENT_ID" (with prefix "INTUIT_")
type EnvProvider struct {
	Prefix string // Prepended to every variable name, may be empty
}

// NewEnvProvider creates a new environment variable secret provider.
//
// The prefix is prepended to all variable names. With prefix "INTUIT_"
// the secret "client_secret" is read from "INTUIT_CLIENT_SECRET".
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{
		Prefix: prefix,
	}
}

// GetSecret retrieves a secret from an environment variable.
//
// The secret name is converted to a variable name by uppercasing it,
// replacing hyphens with underscores, and prepending the prefix.
func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	envVar := p.secretNameToEnvVar(name)

	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("secret not found in environment: %s (env var: %s)", name, envVar)
	}

	return value, nil
}

// ListSecrets returns the names of all secrets present in the environment
// under the configured prefix. Values are not included.
func (p *EnvProvider) ListSecrets(ctx context.Context) ([]string, error) {
	var names []string

	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, p.Prefix) {
			continue
		}

		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		names = append(names, p.envVarToSecretName(parts[0]))
	}

	return names, nil
}

// Name returns the provider name.
func (p *EnvProvider) Name() string {
	return "env"
}

// Supports reports whether this provider can serve the given secret.
//
// Always true: any secret can potentially be set as an environment
// variable, which lets the provider act as a fallback.
func (p *EnvProvider) Supports(name string) bool {
	return true
}

// secretNameToEnvVar converts a secret name to an environment variable name.
//
// Example: "client_id" -> "INTUIT_CLIENT_ID"
func (p *EnvProvider) secretNameToEnvVar(name string) string {
	envVar := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return p.Prefix + envVar
}

// envVarToSecretName converts a variable name back to a secret name.
// Underscores are kept so the result matches the file provider's naming.
//
// Example: "INTUIT_CLIENT_ID" -> "client_id"
func (p *EnvProvider) envVarToSecretName(envVar string) string {
	return strings.ToLower(strings.TrimPrefix(envVar, p.Prefix))
}
