// Package tokens manages OAuth 2.0 credentials for connected QuickBooks
// realms.
//
// # Overview
//
// Each realm that completes the Intuit consent flow gets a stored
// access/refresh token pair. The Manager is the only component that
// touches that pair: it serves access tokens to the QuickBooks client,
// refreshes them before expiry, and persists every rotation, since
// Intuit invalidates the previous refresh token whenever it issues a
// new one.
//
// # Connection Lifecycle
//
//	AuthCodeURL -> consent screen -> Exchange        (realm connected)
//	AccessToken                                      (serves cached or refreshed token)
//	Disconnect                                       (realm forgotten)
//
// A realm leaves the connected state when its refresh token passes the
// lifetime Intuit reported, or when the token endpoint answers
// invalid_grant. Both surface as *ReconnectError; everything transient
// surfaces as *RefreshError.
//
// # Secret Handling
//
// Access and refresh tokens never appear in log output or error
// messages, and the OAuth client credentials are fetched from a
// CredentialsSource on every endpoint call rather than held in the
// Manager.
package tokens
