package webapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"brightbooks-hq/ledgerport/pkg/tokens/storage"
)

// Paths for the OAuth consent flow.
const (
	ConnectPath  = "/connect"
	CallbackPath = "/oauth/callback"
)

// StateCookieName is the CSRF state cookie set during connect and
// verified by the callback.
const StateCookieName = "qbo_oauth_state"

// stateTTL bounds how long a consent round trip may take.
const stateTTL = 10 * time.Minute

// Connector starts and completes the OAuth consent flow.
// *tokens.Manager implements it.
type Connector interface {
	AuthCodeURL(ctx context.Context, state string) (string, error)
	Exchange(ctx context.Context, realmID, code string) (*storage.Token, error)
}

// ConnectHandler sends the browser to the Intuit consent screen with a
// random state parameter, remembered in an HttpOnly cookie.
type ConnectHandler struct {
	Connector Connector

	// SecureCookies marks the state cookie Secure. Enable behind HTTPS.
	SecureCookies bool
}

// NewConnectHandler creates the consent redirect handler.
func NewConnectHandler(c Connector, secureCookies bool) *ConnectHandler {
	return &ConnectHandler{Connector: c, SecureCookies: secureCookies}
}

// ServeHTTP implements http.Handler.
func (h *ConnectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	state := uuid.New().String()

	consentURL, err := h.Connector.AuthCodeURL(r.Context(), state)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build consent URL", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrorResponse{
			Error:   CodeAuthFailed,
			Message: "authorization is not configured",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, consentURL, http.StatusFound)
}

// CallbackHandler completes the consent flow: it verifies the state
// against the cookie, exchanges the authorization code, and confirms
// the connected realm. The token pair stays server side; no response
// ever carries it.
type CallbackHandler struct {
	Connector Connector
}

// NewCallbackHandler creates the OAuth callback handler.
func NewCallbackHandler(c Connector) *CallbackHandler {
	return &CallbackHandler{Connector: c}
}

// ServeHTTP implements http.Handler.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	realmID := query.Get("realmId")
	state := query.Get("state")

	if code == "" || realmID == "" || state == "" {
		WriteError(w, http.StatusBadRequest, ErrorResponse{
			Error:   CodeMissingParams,
			Message: "code, realmId, and state are all required",
		})
		return
	}

	cookie, err := r.Cookie(StateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != state {
		WriteError(w, http.StatusBadRequest, ErrorResponse{Error: CodeInvalidState})
		return
	}

	if _, err := h.Connector.Exchange(r.Context(), realmID, code); err != nil {
		slog.ErrorContext(r.Context(), "authorization code exchange failed",
			"realm_id", realmID,
			"error", err,
		)
		WriteError(w, http.StatusInternalServerError, ErrorResponse{Error: CodeExchangeFailed})
		return
	}

	// Burn the state cookie; the consent round trip is complete.
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	slog.InfoContext(r.Context(), "realm connected", "realm_id", realmID)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"connected": true,
		"realmId":   realmID,
	})
}
