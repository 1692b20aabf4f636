package qbo

import (
	"context"
	"time"
)

// Record is one raw QBO entity as returned by the query API.
// It mirrors the JSON exactly; no fields are renamed, typed, or dropped.
type Record map[string]any

// TokenProvider supplies a valid bearer token for a realm.
//
// Implementations own refresh policy entirely. The fetcher calls Token
// before every page request and treats any error as fatal to the fetch,
// passing it through unchanged so the caller can distinguish
// reconnect-required conditions from other failures.
type TokenProvider interface {
	Token(ctx context.Context, realmID string) (string, error)
}

// TokenProviderFunc adapts a function to the TokenProvider interface.
type TokenProviderFunc func(ctx context.Context, realmID string) (string, error)

// Token calls f.
func (f TokenProviderFunc) Token(ctx context.Context, realmID string) (string, error) {
	return f(ctx, realmID)
}

// FetchObserver receives page-level events from FetchAll. The client
// calls it inline between page requests, so implementations must return
// quickly and be safe for concurrent use when the client is shared.
type FetchObserver interface {
	// PageFetched reports one completed page request. records is the
	// batch size, zero when the request failed.
	PageFetched(page, records int, duration time.Duration, err error)

	// FetchDone reports the end of a fetch with its totals. pages counts
	// every request issued, the failed one included when err is non-nil.
	FetchDone(pages, records int, err error)
}

// teeObserver forwards fetch events to two observers in order.
type teeObserver struct {
	first, second FetchObserver
}

func (t teeObserver) PageFetched(page, records int, duration time.Duration, err error) {
	t.first.PageFetched(page, records, duration, err)
	t.second.PageFetched(page, records, duration, err)
}

func (t teeObserver) FetchDone(pages, records int, err error) {
	t.first.FetchDone(pages, records, err)
	t.second.FetchDone(pages, records, err)
}

// ClientConfig contains the settings for a query client.
type ClientConfig struct {
	// APIBase is the QBO API base URL (production or sandbox host).
	APIBase string

	// MinorVersion is the QBO API minor version sent with every query.
	MinorVersion int

	// Timeout bounds a single page request, not the whole fetch loop.
	Timeout time.Duration

	// PageSize is the MAXRESULTS window for paginated queries (1..1000).
	PageSize int

	// MaxIdleConns controls the HTTP connection pool size.
	MaxIdleConns int

	// IdleConnTimeout is how long idle connections are kept pooled.
	IdleConnTimeout time.Duration

	// Observer receives page-level fetch events. Nil disables reporting.
	Observer FetchObserver
}

// Query describes one bulk query: which realm to ask, which envelope key
// holds the result batch, and the statement to page through.
type Query struct {
	// RealmID is the QBO company being queried.
	RealmID string

	// Entity is the key inside the QueryResponse envelope holding the
	// batch array, e.g. "Invoice".
	Entity string

	// Statement is the full query without pagination clauses, e.g.
	// "SELECT * FROM Invoice WHERE TxnDate >= '2024-01-01'".
	Statement string
}
