package storage

import (
	"context"
	"time"
)

// Backend defines the interface for OAuth token persistence.
// Implementations must be thread-safe and support concurrent access.
type Backend interface {
	// Save persists the token set for a realm.
	// If a token set already exists for the realm, it is replaced.
	Save(ctx context.Context, token *Token) error

	// Load retrieves the token set for a realm.
	// Returns nil if the realm has never connected. Returns error on system failure.
	Load(ctx context.Context, realmID string) (*Token, error)

	// Delete removes the token set for a realm.
	// No-op if the realm has no stored tokens.
	Delete(ctx context.Context, realmID string) error

	// List returns the token sets for all connected realms, ordered by realm ID.
	List(ctx context.Context) ([]*Token, error)

	// Close releases any resources held by the backend.
	// The backend should not be used after calling Close.
	Close() error
}

// Token is the persisted OAuth state for a single QuickBooks realm.
// Intuit rotates refresh tokens on every refresh, so both halves of the
// pair are stored and replaced together.
type Token struct {
	// RealmID is the QuickBooks company identifier the tokens belong to.
	RealmID string

	// AccessToken is the current bearer token for API calls.
	AccessToken string

	// RefreshToken is the current refresh token. Superseded values are
	// invalid the moment Intuit issues a replacement.
	RefreshToken string

	// ExpiresAt is when the access token stops being accepted.
	ExpiresAt time.Time

	// RefreshExpiresAt is when the refresh token stops being accepted.
	// Zero when the token endpoint did not report a refresh lifetime.
	RefreshExpiresAt time.Time

	// UpdatedAt is when this token set was last written.
	UpdatedAt time.Time
}

// clone returns a copy so callers and the backend never share a Token.
func (t *Token) clone() *Token {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
