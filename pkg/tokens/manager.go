package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"brightbooks-hq/ledgerport/pkg/tokens/storage"
)

// Intuit OAuth endpoints. Sandbox and production companies share them.
const (
	DefaultAuthURL  = "https://appcenter.intuit.com/connect/oauth2"
	DefaultTokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
)

const (
	// DefaultScope grants read/write access to the accounting API.
	DefaultScope = "com.intuit.quickbooks.accounting"

	// DefaultRefreshSkew refreshes access tokens this long before their
	// recorded expiry, so a token never dies mid-export.
	DefaultRefreshSkew = 2 * time.Minute

	// defaultTokenLifetime is assumed when the token endpoint omits
	// expires_in. Intuit access tokens last one hour.
	defaultTokenLifetime = time.Hour

	// refreshLifetimeKey is the nonstandard field Intuit adds to token
	// responses with the remaining refresh-token lifetime in seconds.
	refreshLifetimeKey = "x_refresh_token_expires_in"
)

// CredentialsSource supplies the OAuth client credentials registered for
// this app with Intuit. Implementations must never cache stale values
// longer than their own refresh mechanism allows.
type CredentialsSource interface {
	// Credentials returns the current client ID and client secret.
	Credentials(ctx context.Context) (clientID, clientSecret string, err error)
}

// Config contains configuration for the token manager.
type Config struct {
	// Credentials supplies the OAuth client ID and secret. Required.
	Credentials CredentialsSource

	// Storage persists token sets across requests. Defaults to an
	// in-memory backend when nil.
	Storage storage.Backend

	// AuthURL is the consent screen endpoint. Defaults to DefaultAuthURL.
	AuthURL string

	// TokenURL is the token exchange endpoint. Defaults to DefaultTokenURL.
	TokenURL string

	// RedirectURL is the registered OAuth callback URL.
	RedirectURL string

	// Scopes requested during consent. Defaults to DefaultScope.
	Scopes []string

	// RefreshSkew is how early to refresh before the recorded expiry.
	// Defaults to DefaultRefreshSkew.
	RefreshSkew time.Duration

	// OnRefresh, when set, receives the outcome of every refresh
	// attempt: "success", "reconnect", or "error". Called with m.mu
	// held, so it must not call back into the manager.
	OnRefresh func(outcome string)
}

// Manager owns the OAuth lifecycle for connected QuickBooks realms.
//
// It hands out valid access tokens, refreshing them through the Intuit
// token endpoint when they near expiry, and persists every rotation of
// the access/refresh pair. Callers treat it as the single source of
// bearer tokens and never see refresh tokens at all.
//
// # Example
//
//	manager, err := tokens.NewManager(tokens.Config{
//	    Credentials: secretsProvider,
//	    Storage:     backend,
//	    RedirectURL: "https://localhost:8443/oauth/callback",
//	})
//
//	accessToken, err := manager.AccessToken(ctx, realmID)
//	var reconnect *tokens.ReconnectError
//	if errors.As(err, &reconnect) {
//	    // send the user to manager.AuthCodeURL(ctx, state)
//	}
type Manager struct {
	storage     storage.Backend
	creds       CredentialsSource
	authURL     string
	tokenURL    string
	redirectURL string
	scopes      []string
	refreshSkew time.Duration
	onRefresh   func(outcome string)

	logger *slog.Logger
	now    func() time.Time

	// mu serializes refreshes so concurrent requests for the same realm
	// trigger one token-endpoint call, not one each. Intuit invalidates
	// the old refresh token on rotation, so racing refreshes can strand
	// a realm with no valid grant.
	mu sync.Mutex
}

// NewManager creates a new token manager with the given configuration.
func NewManager(config Config) (*Manager, error) {
	if config.Credentials == nil {
		return nil, fmt.Errorf("credentials source cannot be nil")
	}
	if config.Storage == nil {
		config.Storage = storage.NewMemoryBackend()
	}
	if config.AuthURL == "" {
		config.AuthURL = DefaultAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = DefaultTokenURL
	}
	if len(config.Scopes) == 0 {
		config.Scopes = []string{DefaultScope}
	}
	if config.RefreshSkew == 0 {
		config.RefreshSkew = DefaultRefreshSkew
	}

	return &Manager{
		storage:     config.Storage,
		creds:       config.Credentials,
		authURL:     config.AuthURL,
		tokenURL:    config.TokenURL,
		redirectURL: config.RedirectURL,
		scopes:      config.Scopes,
		refreshSkew: config.RefreshSkew,
		onRefresh:   config.OnRefresh,
		logger:      slog.Default().With("component", "tokens"),
		now:         time.Now,
	}, nil
}

// AccessToken returns a valid bearer token for the realm, refreshing the
// stored pair first when the access token is expired or about to expire.
//
// Returns *ReconnectError when the realm has no stored connection, its
// refresh token is past its recorded lifetime, or the token endpoint
// rejects the refresh token. Returns *RefreshError when a refresh fails
// for a transient reason and retrying later may succeed.
func (m *Manager) AccessToken(ctx context.Context, realmID string) (string, error) {
	if realmID == "" {
		return "", fmt.Errorf("realm id cannot be empty")
	}

	token, err := m.storage.Load(ctx, realmID)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if token == nil {
		return "", NewReconnectError(realmID, "no stored connection")
	}
	if m.fresh(token) {
		return token.AccessToken, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-check under the lock: a concurrent request may have already
	// refreshed and persisted a new pair.
	token, err = m.storage.Load(ctx, realmID)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if token == nil {
		return "", NewReconnectError(realmID, "no stored connection")
	}
	if m.fresh(token) {
		return token.AccessToken, nil
	}

	refreshed, err := m.refresh(ctx, token)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Exchange trades an authorization code from the OAuth callback for a
// token pair and persists it for the realm. The returned token is the
// stored copy; callers must not put it in any HTTP response.
func (m *Manager) Exchange(ctx context.Context, realmID, code string) (*storage.Token, error) {
	if realmID == "" {
		return nil, fmt.Errorf("realm id cannot be empty")
	}
	if code == "" {
		return nil, fmt.Errorf("authorization code cannot be empty")
	}

	conf, err := m.oauthConfig(ctx)
	if err != nil {
		return nil, err
	}

	exchanged, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if exchanged.AccessToken == "" || exchanged.RefreshToken == "" {
		return nil, fmt.Errorf("token response missing access or refresh token")
	}

	now := m.now()
	token := &storage.Token{
		RealmID:      realmID,
		AccessToken:  exchanged.AccessToken,
		RefreshToken: exchanged.RefreshToken,
		ExpiresAt:    exchanged.Expiry,
		UpdatedAt:    now,
	}
	if token.ExpiresAt.IsZero() {
		token.ExpiresAt = now.Add(defaultTokenLifetime)
	}
	if secs, ok := exchanged.Extra(refreshLifetimeKey).(float64); ok && secs > 0 {
		token.RefreshExpiresAt = now.Add(time.Duration(secs) * time.Second)
	}

	if err := m.storage.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	m.logger.Info("connected realm",
		"realm_id", realmID,
		"expires_at", token.ExpiresAt,
	)
	return token, nil
}

// AuthCodeURL returns the consent screen URL to redirect the user to.
// The state value is round-tripped through the callback and must be
// verified there before calling Exchange.
func (m *Manager) AuthCodeURL(ctx context.Context, state string) (string, error) {
	conf, err := m.oauthConfig(ctx)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state), nil
}

// Disconnect forgets the stored token pair for a realm. The next
// AccessToken call for it returns *ReconnectError.
func (m *Manager) Disconnect(ctx context.Context, realmID string) error {
	if realmID == "" {
		return fmt.Errorf("realm id cannot be empty")
	}
	if err := m.storage.Delete(ctx, realmID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	m.logger.Info("disconnected realm", "realm_id", realmID)
	return nil
}

// Connections returns the stored token sets for all connected realms.
// Callers displaying them must show realm IDs and expiries only.
func (m *Manager) Connections(ctx context.Context) ([]*storage.Token, error) {
	return m.storage.List(ctx)
}

// Close releases any resources held by the manager.
func (m *Manager) Close() error {
	if m.storage != nil {
		return m.storage.Close()
	}
	return nil
}

// fresh reports whether the access token outlives the refresh skew.
func (m *Manager) fresh(token *storage.Token) bool {
	return token.ExpiresAt.After(m.now().Add(m.refreshSkew))
}

// refresh trades the stored refresh token for a new pair and persists the
// rotation. Caller must hold m.mu.
func (m *Manager) refresh(ctx context.Context, token *storage.Token) (*storage.Token, error) {
	updated, err := m.refreshLocked(ctx, token)
	m.reportRefresh(err)
	return updated, err
}

// reportRefresh feeds the refresh outcome to the OnRefresh hook.
func (m *Manager) reportRefresh(err error) {
	if m.onRefresh == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		var reconnect *ReconnectError
		if errors.As(err, &reconnect) {
			outcome = "reconnect"
		}
	}
	m.onRefresh(outcome)
}

func (m *Manager) refreshLocked(ctx context.Context, token *storage.Token) (*storage.Token, error) {
	now := m.now()
	if !token.RefreshExpiresAt.IsZero() && !token.RefreshExpiresAt.After(now) {
		return nil, NewReconnectError(token.RealmID, "refresh token expired")
	}

	conf, err := m.oauthConfig(ctx)
	if err != nil {
		return nil, err
	}

	src := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: token.RefreshToken})
	exchanged, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
			return nil, NewReconnectError(token.RealmID, "refresh token rejected")
		}
		return nil, NewRefreshError(token.RealmID, err)
	}

	updated := &storage.Token{
		RealmID:          token.RealmID,
		AccessToken:      exchanged.AccessToken,
		RefreshToken:     token.RefreshToken,
		ExpiresAt:        exchanged.Expiry,
		RefreshExpiresAt: token.RefreshExpiresAt,
		UpdatedAt:        now,
	}
	if exchanged.RefreshToken != "" {
		updated.RefreshToken = exchanged.RefreshToken
	}
	if updated.ExpiresAt.IsZero() {
		updated.ExpiresAt = now.Add(defaultTokenLifetime)
	}
	if secs, ok := exchanged.Extra(refreshLifetimeKey).(float64); ok && secs > 0 {
		updated.RefreshExpiresAt = now.Add(time.Duration(secs) * time.Second)
	}

	if err := m.storage.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("persist refreshed token: %w", err)
	}

	m.logger.Debug("refreshed access token",
		"realm_id", token.RealmID,
		"expires_at", updated.ExpiresAt,
	)
	return updated, nil
}

// oauthConfig builds the oauth2 client config with the current credentials.
// Credentials are fetched per call so secret rotation takes effect without
// a restart.
func (m *Manager) oauthConfig(ctx context.Context) (*oauth2.Config, error) {
	clientID, clientSecret, err := m.creds.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("load client credentials: %w", err)
	}

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  m.redirectURL,
		Scopes:       m.scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  m.authURL,
			TokenURL: m.tokenURL,
			// Intuit requires client authentication in the
			// Authorization header, not the request body.
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}, nil
}
