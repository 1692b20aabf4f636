package qbotest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

// TokenServer is a fake Intuit bearer token endpoint. It answers every
// grant with the configured token pair and records the form of each
// request for inspection.
type TokenServer struct {
	server *httptest.Server

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresIn    int
	refreshIn    int
	failStatus   int
	failBody     string
	grants       []url.Values
}

// NewTokenServer starts a token endpoint handing out a fixed pair.
func NewTokenServer() *TokenServer {
	ts := &TokenServer{
		accessToken:  "test-access-token",
		refreshToken: "test-refresh-token",
		expiresIn:    3600,
		refreshIn:    8726400,
	}
	ts.server = httptest.NewServer(http.HandlerFunc(ts.handler))
	return ts
}

// URL returns the endpoint URL, suitable for oauth token configuration.
func (ts *TokenServer) URL() string {
	return ts.server.URL
}

// Close shuts the endpoint down.
func (ts *TokenServer) Close() {
	ts.server.Close()
}

// SetTokens changes the pair handed out on the next grant.
func (ts *TokenServer) SetTokens(access, refresh string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.accessToken = access
	ts.refreshToken = refresh
}

// Fail makes every grant fail with the status and body. Status 0
// restores normal responses.
func (ts *TokenServer) Fail(status int, body string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.failStatus = status
	ts.failBody = body
}

// Grants returns the form values of every grant request received.
func (ts *TokenServer) Grants() []url.Values {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]url.Values(nil), ts.grants...)
}

func (ts *TokenServer) handler(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	ts.mu.Lock()
	ts.grants = append(ts.grants, r.PostForm)
	access, refresh := ts.accessToken, ts.refreshToken
	expiresIn, refreshIn := ts.expiresIn, ts.refreshIn
	failStatus, failBody := ts.failStatus, ts.failBody
	ts.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failStatus != 0 {
		w.WriteHeader(failStatus)
		_, _ = w.Write([]byte(failBody))
		return
	}

	_, _ = fmt.Fprintf(w, `{
		"token_type": "bearer",
		"access_token": %q,
		"refresh_token": %q,
		"expires_in": %d,
		"x_refresh_token_expires_in": %d
	}`, access, refresh, expiresIn, refreshIn)
}
