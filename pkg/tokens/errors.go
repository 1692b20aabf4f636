package tokens

import "fmt"

// ReconnectError indicates a realm has no usable OAuth grant left: it never
// connected, its refresh token aged out, or the token endpoint rejected the
// refresh token as invalid_grant. The only recovery is sending the user back
// through the consent screen.
type ReconnectError struct {
	// RealmID is the QuickBooks company that must reconnect.
	RealmID string

	// Reason describes why the stored grant is unusable.
	Reason string
}

// Error implements the error interface.
func (e *ReconnectError) Error() string {
	return fmt.Sprintf("tokens: reconnect required for realm %s: %s", e.RealmID, e.Reason)
}

// NewReconnectError creates a new ReconnectError.
func NewReconnectError(realmID, reason string) *ReconnectError {
	return &ReconnectError{RealmID: realmID, Reason: reason}
}

// RefreshError indicates a refresh attempt failed for a reason that does not
// invalidate the stored grant, such as a network failure or a 5xx from the
// token endpoint. The refresh token is still presumed good and a later
// attempt may succeed.
type RefreshError struct {
	// RealmID is the QuickBooks company whose refresh failed.
	RealmID string

	// Cause is the underlying transport or endpoint error.
	Cause error
}

// Error implements the error interface.
func (e *RefreshError) Error() string {
	return fmt.Sprintf("tokens: refresh failed for realm %s: %v", e.RealmID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RefreshError) Unwrap() error {
	return e.Cause
}

// NewRefreshError creates a new RefreshError.
func NewRefreshError(realmID string, cause error) *RefreshError {
	return &RefreshError{RealmID: realmID, Cause: cause}
}
