package qbo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 60 * time.Second

	// DefaultPageSize is the MAXRESULTS window used when none is configured.
	DefaultPageSize = 1000

	// MaxPageSize is the largest MAXRESULTS value QBO accepts.
	MaxPageSize = 1000

	// DefaultMinorVersion is the QBO API minor version sent with queries.
	DefaultMinorVersion = 75

	// DefaultMaxIdleConns is the connection pool size used when none is
	// configured.
	DefaultMaxIdleConns = 10

	// DefaultIdleConnTimeout is how long idle connections stay pooled.
	DefaultIdleConnTimeout = 90 * time.Second
)

// Client executes QBO bulk queries.
//
// A Client is safe for concurrent use. Each call carries the realm it
// targets, so one Client serves every connected company.
type Client struct {
	apiBase      string
	minorVersion int
	pageSize     int
	httpClient   *http.Client
	tokens       TokenProvider
	observer     FetchObserver
}

// NewClient creates a query client with a pooled transport. Zero-valued
// settings fall back to the package defaults.
func NewClient(cfg ClientConfig, tokens TokenProvider) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	minorVersion := cfg.MinorVersion
	if minorVersion <= 0 {
		minorVersion = DefaultMinorVersion
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdleConns
	}
	idleTimeout := cfg.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleConnTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        maxIdle,
		MaxIdleConnsPerHost: maxIdle,
		IdleConnTimeout:     idleTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		apiBase:      strings.TrimRight(cfg.APIBase, "/"),
		minorVersion: minorVersion,
		pageSize:     pageSize,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		tokens:   tokens,
		observer: cfg.Observer,
	}
}

// PageSize reports the effective MAXRESULTS window.
func (c *Client) PageSize() int {
	return c.pageSize
}

// WithObserver returns a copy of the client that reports fetch events
// to obs as well as to any observer from the client configuration. The
// copy shares the underlying HTTP client and its connection pool, so
// per-request copies are cheap.
func (c *Client) WithObserver(obs FetchObserver) *Client {
	if obs == nil {
		return c
	}
	clone := *c
	if c.observer != nil {
		clone.observer = teeObserver{c.observer, obs}
	} else {
		clone.observer = obs
	}
	return &clone
}

// fetchPage executes one paginated statement and returns its batch.
// The statement rides the URL as a query parameter on a GET request;
// sending it as a POST body makes QBO's parser reject it with
// QueryParserError.
func (c *Client) fetchPage(ctx context.Context, q Query, statement string) ([]Record, error) {
	token, err := c.tokens.Token(ctx, q.RealmID)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v3/company/%s/query", c.apiBase, url.PathEscape(q.RealmID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewTransportError(statement, err)
	}

	params := url.Values{}
	params.Set("query", statement)
	params.Set("minorversion", strconv.Itoa(c.minorVersion))
	req.URL.RawQuery = params.Encode()

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransportError(statement, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(statement, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, NewAuthError(string(body))
	case resp.StatusCode >= 400:
		return nil, NewQueryError(resp.StatusCode, string(body), statement)
	}

	records, err := decodeBatch(body, q.Entity)
	if err != nil {
		return nil, &QueryError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Query:      statement,
			Cause:      err,
		}
	}
	return records, nil
}

// decodeBatch extracts the entity array from a query response envelope.
// An empty body, a missing QueryResponse, and a missing or null entity
// key all mean the page held no records.
func decodeBatch(body []byte, entity string) ([]Record, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var envelope struct {
		QueryResponse map[string]json.RawMessage `json:"QueryResponse"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding query response: %w", err)
	}

	raw, ok := envelope.QueryResponse[entity]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decoding %s batch: %w", entity, err)
	}
	return records, nil
}
