package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"brightbooks-hq/ledgerport/pkg/export"
	"brightbooks-hq/ledgerport/pkg/qbo"
	"brightbooks-hq/ledgerport/pkg/tokens"
)

func TestExportErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "reconnect required",
			err:        tokens.NewReconnectError("12345", "refresh token expired"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeReconnectRequired,
		},
		{
			name:       "invalid format",
			err:        export.NewInvalidFormatError("xml"),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidFormat,
		},
		{
			name:       "auth rejected",
			err:        qbo.NewAuthError(`{"fault": {"type": "AUTHENTICATION"}}`),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeAuthFailed,
		},
		{
			name:       "refresh failed",
			err:        tokens.NewRefreshError("12345", errors.New("connection refused")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeAuthFailed,
		},
		{
			name:       "query failed",
			err:        qbo.NewQueryError(500, "internal error", "SELECT * FROM Invoice"),
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeQueryFailed,
		},
		{
			name:       "query transport failed",
			err:        qbo.NewTransportError("SELECT * FROM Invoice", errors.New("dial tcp: timeout")),
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeQueryFailed,
		},
		{
			name:       "serialization failed",
			err:        export.NewSerializationError(errors.New("unsupported value")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeExportFailed,
		},
		{
			name:       "unclassified error",
			err:        errors.New("something odd"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternalError,
		},
		{
			name:       "wrapped error still classifies",
			err:        fmt.Errorf("fetching invoices: %w", qbo.NewQueryError(429, "throttled", "SELECT * FROM Invoice")),
			wantStatus: http.StatusBadGateway,
			wantCode:   CodeQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := ExportErrorResponse(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %v, want %v", status, tt.wantStatus)
			}
			if resp.Error != tt.wantCode {
				t.Errorf("code = %v, want %v", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestExportErrorResponse_ReconnectCarriesConnectURL(t *testing.T) {
	_, resp := ExportErrorResponse(tokens.NewReconnectError("12345", "never connected"))

	if resp.ConnectURL != ConnectPath {
		t.Errorf("ConnectURL = %q, want %q", resp.ConnectURL, ConnectPath)
	}
	if resp.Message == "" {
		t.Error("expected a reconnect message")
	}
}

func TestExportErrorResponse_InvalidFormatCarriesAllowedSet(t *testing.T) {
	_, resp := ExportErrorResponse(export.NewInvalidFormatError("xlsx"))

	if !reflect.DeepEqual(resp.Allowed, export.AllowedFormats) {
		t.Errorf("Allowed = %v, want %v", resp.Allowed, export.AllowedFormats)
	}
}

func TestExportErrorResponse_UnclassifiedErrorIsNotEchoed(t *testing.T) {
	_, resp := ExportErrorResponse(errors.New("pq: password authentication failed for user"))

	if strings.Contains(resp.Message, "password") {
		t.Errorf("message echoes the underlying error: %q", resp.Message)
	}
	if resp.Message != "export failed" {
		t.Errorf("message = %q, want the generic %q", resp.Message, "export failed")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, ErrorResponse{
		Error:   CodeInvalidYear,
		Message: "year must be a four digit number",
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %v, want %v", rec.Code, http.StatusBadRequest)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["error"] != CodeInvalidYear {
		t.Errorf("error = %v, want %v", body["error"], CodeInvalidYear)
	}
	if _, present := body["allowed"]; present {
		t.Error("empty allowed list should be omitted from the body")
	}
	if _, present := body["connect_url"]; present {
		t.Error("empty connect_url should be omitted from the body")
	}
}
