package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"brightbooks-hq/ledgerport/pkg/tokens/storage"
)

// fakeConnector records consent flow calls in memory.
type fakeConnector struct {
	states      []string
	authErr     error
	exchangeErr error
	exchanged   [][2]string // realmID, code pairs
}

func (f *fakeConnector) AuthCodeURL(ctx context.Context, state string) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	f.states = append(f.states, state)
	return "https://appcenter.example.com/connect/oauth2?state=" + url.QueryEscape(state), nil
}

func (f *fakeConnector) Exchange(ctx context.Context, realmID, code string) (*storage.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	f.exchanged = append(f.exchanged, [2]string{realmID, code})
	return &storage.Token{
		RealmID:      realmID,
		AccessToken:  "granted-access",
		RefreshToken: "granted-refresh",
	}, nil
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestConnectHandler(t *testing.T) {
	connector := &fakeConnector{}
	handler := NewConnectHandler(connector, false)

	req := httptest.NewRequest(http.MethodGet, ConnectPath, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusFound)
	}
	if len(connector.states) != 1 {
		t.Fatalf("AuthCodeURL called %d times, want 1", len(connector.states))
	}
	state := connector.states[0]
	if state == "" {
		t.Fatal("generated state is empty")
	}

	location := rec.Header().Get("Location")
	if !strings.Contains(location, url.QueryEscape(state)) {
		t.Errorf("Location %q does not carry the state", location)
	}

	cookie := findCookie(rec.Result().Cookies(), StateCookieName)
	if cookie == nil {
		t.Fatalf("no %s cookie set", StateCookieName)
	}
	if cookie.Value != state {
		t.Errorf("cookie value = %q, want the redirected state %q", cookie.Value, state)
	}
	if !cookie.HttpOnly {
		t.Error("state cookie is not HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("state cookie SameSite = %v, want Lax", cookie.SameSite)
	}
	if cookie.MaxAge != 600 {
		t.Errorf("state cookie MaxAge = %d, want 600", cookie.MaxAge)
	}
	if cookie.Secure {
		t.Error("state cookie marked Secure without SecureCookies")
	}
}

func TestConnectHandler_UniqueStates(t *testing.T) {
	connector := &fakeConnector{}
	handler := NewConnectHandler(connector, false)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ConnectPath, nil))
	}

	seen := make(map[string]bool)
	for _, state := range connector.states {
		if seen[state] {
			t.Fatalf("state %q issued twice", state)
		}
		seen[state] = true
	}
}

func TestConnectHandler_SecureCookies(t *testing.T) {
	handler := NewConnectHandler(&fakeConnector{}, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ConnectPath, nil))

	cookie := findCookie(rec.Result().Cookies(), StateCookieName)
	if cookie == nil {
		t.Fatalf("no %s cookie set", StateCookieName)
	}
	if !cookie.Secure {
		t.Error("state cookie not marked Secure")
	}
}

func TestConnectHandler_AuthURLFailure(t *testing.T) {
	connector := &fakeConnector{authErr: errors.New("client_id not configured")}
	handler := NewConnectHandler(connector, false)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, ConnectPath, nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusInternalServerError)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if resp.Error != CodeAuthFailed {
		t.Errorf("code = %q, want %q", resp.Error, CodeAuthFailed)
	}
	if findCookie(rec.Result().Cookies(), StateCookieName) != nil {
		t.Error("state cookie set despite the failure")
	}
}

// callbackRequest builds a callback request carrying the given query
// parameters and, when cookieState is non-empty, the state cookie.
func callbackRequest(code, realmID, state, cookieState string) *http.Request {
	values := url.Values{}
	if code != "" {
		values.Set("code", code)
	}
	if realmID != "" {
		values.Set("realmId", realmID)
	}
	if state != "" {
		values.Set("state", state)
	}
	req := httptest.NewRequest(http.MethodGet, CallbackPath+"?"+values.Encode(), nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: StateCookieName, Value: cookieState})
	}
	return req
}

func TestCallbackHandler(t *testing.T) {
	connector := &fakeConnector{}
	handler := NewCallbackHandler(connector)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, callbackRequest("auth-code-1", testRealm, "state-1", "state-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	if len(connector.exchanged) != 1 {
		t.Fatalf("Exchange called %d times, want 1", len(connector.exchanged))
	}
	if got := connector.exchanged[0]; got[0] != testRealm || got[1] != "auth-code-1" {
		t.Errorf("Exchange called with %v, want [%s auth-code-1]", got, testRealm)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["connected"] != true {
		t.Errorf("connected = %v, want true", body["connected"])
	}
	if body["realmId"] != testRealm {
		t.Errorf("realmId = %v, want %v", body["realmId"], testRealm)
	}

	// The success body confirms the realm and nothing more. Tokens stay
	// server side.
	raw := rec.Body.String()
	for _, secret := range []string{"granted-access", "granted-refresh"} {
		if strings.Contains(raw, secret) {
			t.Errorf("response leaks %q", secret)
		}
	}

	cookie := findCookie(rec.Result().Cookies(), StateCookieName)
	if cookie == nil {
		t.Fatal("state cookie not cleared after the callback")
	}
	if cookie.MaxAge >= 0 {
		t.Errorf("state cookie MaxAge = %d, want a deletion", cookie.MaxAge)
	}
}

func TestCallbackHandler_MissingParams(t *testing.T) {
	tests := []struct {
		name string
		req  *http.Request
	}{
		{"no code", callbackRequest("", testRealm, "state-1", "state-1")},
		{"no realm", callbackRequest("auth-code-1", "", "state-1", "state-1")},
		{"no state", callbackRequest("auth-code-1", testRealm, "", "state-1")},
		{"nothing at all", callbackRequest("", "", "", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connector := &fakeConnector{}
			rec := httptest.NewRecorder()
			NewCallbackHandler(connector).ServeHTTP(rec, tt.req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %v, want %v", rec.Code, http.StatusBadRequest)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if resp.Error != CodeMissingParams {
				t.Errorf("code = %q, want %q", resp.Error, CodeMissingParams)
			}
			if len(connector.exchanged) != 0 {
				t.Errorf("Exchange called %d times, want 0", len(connector.exchanged))
			}
		})
	}
}

func TestCallbackHandler_StateMismatch(t *testing.T) {
	tests := []struct {
		name        string
		cookieState string
	}{
		{"no cookie", ""},
		{"different state", "state-other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connector := &fakeConnector{}
			rec := httptest.NewRecorder()
			NewCallbackHandler(connector).ServeHTTP(rec, callbackRequest("auth-code-1", testRealm, "state-1", tt.cookieState))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %v, want %v", rec.Code, http.StatusBadRequest)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if resp.Error != CodeInvalidState {
				t.Errorf("code = %q, want %q", resp.Error, CodeInvalidState)
			}
			if len(connector.exchanged) != 0 {
				t.Errorf("Exchange called %d times, want 0", len(connector.exchanged))
			}
		})
	}
}

func TestCallbackHandler_ExchangeFailure(t *testing.T) {
	connector := &fakeConnector{exchangeErr: errors.New(`token endpoint said {"error": "invalid_client", "client_secret": "sk-hidden"}`)}
	rec := httptest.NewRecorder()
	NewCallbackHandler(connector).ServeHTTP(rec, callbackRequest("auth-code-1", testRealm, "state-1", "state-1"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusInternalServerError)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if resp.Error != CodeExchangeFailed {
		t.Errorf("code = %q, want %q", resp.Error, CodeExchangeFailed)
	}

	// The endpoint's own words never reach the caller.
	if strings.Contains(rec.Body.String(), "invalid_client") || strings.Contains(rec.Body.String(), "sk-hidden") {
		t.Errorf("response echoes the exchange failure: %s", rec.Body.String())
	}
}
