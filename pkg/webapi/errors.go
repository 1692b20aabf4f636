package webapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"brightbooks-hq/ledgerport/pkg/export"
	"brightbooks-hq/ledgerport/pkg/qbo"
	"brightbooks-hq/ledgerport/pkg/tokens"
)

// Error codes carried in JSON error bodies.
const (
	CodeInvalidFormat     = "invalid_format"
	CodeInvalidYear       = "invalid_year"
	CodeMissingRealm      = "missing_realm"
	CodeReconnectRequired = "reconnect_required"
	CodeAuthFailed        = "auth_failed"
	CodeQueryFailed       = "query_failed"
	CodeExportFailed      = "export_failed"
	CodeInvalidState      = "invalid_state"
	CodeMissingParams     = "missing_params"
	CodeExchangeFailed    = "token_exchange_failed"
	CodeInternalError     = "internal_error"
	CodeTimeout           = "timeout"
)

// ErrorResponse is the JSON body of every error the API returns. Empty
// fields are omitted, so the smallest body is {"error": "..."}.
type ErrorResponse struct {
	// Error is the machine-readable code.
	Error string `json:"error"`

	// Message is a human-readable description. It never carries tokens
	// or client credentials.
	Message string `json:"message,omitempty"`

	// Allowed lists the accepted values for invalid_format errors.
	Allowed []string `json:"allowed,omitempty"`

	// ConnectURL points reconnect_required errors at the consent flow.
	ConnectURL string `json:"connect_url,omitempty"`
}

// WriteError writes resp as a JSON body with the given status code.
func WriteError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// ExportErrorResponse maps an export pipeline failure to its HTTP
// status and error body.
//
//	reconnect required      401 reconnect_required, with the connect URL
//	invalid format          400 invalid_format, with the allowed set
//	token rejected mid-run  500 auth_failed
//	refresh failed          500 auth_failed
//	remote query failed     502 query_failed
//	rendering failed        500 export_failed
//	anything else           500 internal_error
func ExportErrorResponse(err error) (int, ErrorResponse) {
	var reconnect *tokens.ReconnectError
	if errors.As(err, &reconnect) {
		return http.StatusUnauthorized, ErrorResponse{
			Error:      CodeReconnectRequired,
			Message:    reconnect.Error(),
			ConnectURL: ConnectPath,
		}
	}

	var invalidFormat *export.InvalidFormatError
	if errors.As(err, &invalidFormat) {
		return http.StatusBadRequest, ErrorResponse{
			Error:   CodeInvalidFormat,
			Allowed: invalidFormat.Allowed,
		}
	}

	var auth *qbo.AuthError
	if errors.As(err, &auth) {
		return http.StatusInternalServerError, ErrorResponse{
			Error:   CodeAuthFailed,
			Message: auth.Error(),
		}
	}

	var refresh *tokens.RefreshError
	if errors.As(err, &refresh) {
		return http.StatusInternalServerError, ErrorResponse{
			Error:   CodeAuthFailed,
			Message: refresh.Error(),
		}
	}

	var query *qbo.QueryError
	if errors.As(err, &query) {
		return http.StatusBadGateway, ErrorResponse{
			Error:   CodeQueryFailed,
			Message: query.Error(),
		}
	}

	var serialization *export.SerializationError
	if errors.As(err, &serialization) {
		return http.StatusInternalServerError, ErrorResponse{
			Error:   CodeExportFailed,
			Message: serialization.Error(),
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error:   CodeInternalError,
		Message: "export failed",
	}
}
