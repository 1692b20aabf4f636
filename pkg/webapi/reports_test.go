package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"brightbooks-hq/ledgerport/internal/qbotest"
	"brightbooks-hq/ledgerport/pkg/audit"
	"brightbooks-hq/ledgerport/pkg/export"
	"brightbooks-hq/ledgerport/pkg/qbo"
	"brightbooks-hq/ledgerport/pkg/telemetry/logging"
	"brightbooks-hq/ledgerport/pkg/tokens"
)

const testRealm = "4620816365214"

// captureRecorder keeps recorded audit events in memory.
type captureRecorder struct {
	events []*audit.ExportEvent
	err    error
}

func (c *captureRecorder) Record(ctx context.Context, event *audit.ExportEvent) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

// captureMetrics keeps the last RecordExport call.
type captureMetrics struct {
	calls   int
	format  string
	status  string
	size    int
	records int
}

func (c *captureMetrics) RecordExport(format, status string, duration time.Duration, sizeBytes, records int) {
	c.calls++
	c.format = format
	c.status = status
	c.size = sizeBytes
	c.records = records
}

// reportFixture wires both report handlers to a fake QBO upstream
// through the same mux patterns the server registers.
type reportFixture struct {
	upstream *qbotest.Server
	recorder *captureRecorder
	metrics  *captureMetrics
	mux      *http.ServeMux
}

func newReportFixture(t *testing.T, provider qbo.TokenProvider) *reportFixture {
	t.Helper()

	upstream := qbotest.NewServer()
	t.Cleanup(upstream.Close)

	if provider == nil {
		provider = qbo.TokenProviderFunc(func(ctx context.Context, realmID string) (string, error) {
			return "test-token", nil
		})
	}
	client := qbo.NewClient(qbo.ClientConfig{
		APIBase:  upstream.URL(),
		PageSize: 50,
	}, provider)

	f := &reportFixture{
		upstream: upstream,
		recorder: &captureRecorder{},
		metrics:  &captureMetrics{},
	}
	f.mux = http.NewServeMux()
	f.mux.Handle("GET "+InvoicesPattern, NewInvoicesHandler(client, f.recorder, f.metrics))
	f.mux.Handle("GET "+InvoiceLinesPattern, NewInvoiceLinesHandler(client, f.recorder, f.metrics))
	return f
}

func (f *reportFixture) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v (body: %s)", err, rec.Body.String())
	}
	return resp
}

func TestReportHandler_InvoicesJSON(t *testing.T) {
	f := newReportFixture(t, nil)
	f.upstream.SeedInvoices(3)

	rec := f.get("/reports/invoices/year/2024?realmId=" + testRealm)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	wantDisposition := fmt.Sprintf("attachment; filename=%q", "invoices_2024_"+testRealm+".json")
	if cd := rec.Header().Get("Content-Disposition"); cd != wantDisposition {
		t.Errorf("Content-Disposition = %q, want %q", cd, wantDisposition)
	}
	if cl := rec.Header().Get("Content-Length"); cl != strconv.Itoa(rec.Body.Len()) {
		t.Errorf("Content-Length = %q, want %d", cl, rec.Body.Len())
	}

	var invoices []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &invoices); err != nil {
		t.Fatalf("body is not a JSON array: %v", err)
	}
	if len(invoices) != 3 {
		t.Errorf("exported %d invoices, want 3", len(invoices))
	}
}

func TestReportHandler_AuditsSuccess(t *testing.T) {
	f := newReportFixture(t, nil)
	f.upstream.SeedInvoices(5)

	req := httptest.NewRequest(http.MethodGet, "/reports/invoices/year/2023?realmId="+testRealm+"&format=csv", nil)
	req = req.WithContext(logging.WithRequestID(req.Context(), "req-abc123"))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	if len(f.recorder.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(f.recorder.events))
	}
	event := f.recorder.events[0]
	if event.Status != audit.StatusCompleted {
		t.Errorf("event status = %v, want %v", event.Status, audit.StatusCompleted)
	}
	if event.RequestID != "req-abc123" {
		t.Errorf("event request ID = %q, want req-abc123", event.RequestID)
	}
	if event.RealmID != testRealm {
		t.Errorf("event realm = %q, want %q", event.RealmID, testRealm)
	}
	if event.Year != 2023 {
		t.Errorf("event year = %d, want 2023", event.Year)
	}
	if event.Report != ReportInvoices {
		t.Errorf("event report = %q, want %q", event.Report, ReportInvoices)
	}
	if event.Format != "csv" {
		t.Errorf("event format = %q, want csv", event.Format)
	}
	if event.RecordCount != 5 {
		t.Errorf("event record count = %d, want 5", event.RecordCount)
	}
	if event.Pages != 1 {
		t.Errorf("event pages = %d, want 1", event.Pages)
	}
	if event.Bytes != int64(rec.Body.Len()) {
		t.Errorf("event bytes = %d, want %d", event.Bytes, rec.Body.Len())
	}
	if event.ID == "" {
		t.Error("event has no ID")
	}

	if f.metrics.calls != 1 {
		t.Fatalf("metrics recorded %d times, want 1", f.metrics.calls)
	}
	if f.metrics.status != "success" {
		t.Errorf("metrics status = %q, want success", f.metrics.status)
	}
	if f.metrics.format != "csv" {
		t.Errorf("metrics format = %q, want csv", f.metrics.format)
	}
	if f.metrics.records != 5 {
		t.Errorf("metrics records = %d, want 5", f.metrics.records)
	}
}

func TestReportHandler_InvoicesCSV(t *testing.T) {
	f := newReportFixture(t, nil)
	f.upstream.SeedInvoices(3)

	rec := f.get("/reports/invoices/year/2024?realmId=" + testRealm + "&format=csv")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}

	body := strings.TrimPrefix(rec.Body.String(), "\ufeff")
	lines := strings.Split(strings.TrimRight(body, "\r\n"), "\r\n")
	if len(lines) != 4 {
		t.Fatalf("CSV has %d lines, want 4 (header + 3 rows)", len(lines))
	}
	if lines[0] != strings.Join(export.InvoiceColumns, ",") {
		t.Errorf("CSV header = %q, want %q", lines[0], strings.Join(export.InvoiceColumns, ","))
	}
}

func TestReportHandler_InvoiceLinesCSV(t *testing.T) {
	f := newReportFixture(t, nil)
	f.upstream.SeedInvoices(2)

	rec := f.get("/reports/invoice_lines_all/year/2024?realmId=" + testRealm + "&format=csv")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	wantDisposition := fmt.Sprintf("attachment; filename=%q", "invoice_lines_all_2024_"+testRealm+".csv")
	if cd := rec.Header().Get("Content-Disposition"); cd != wantDisposition {
		t.Errorf("Content-Disposition = %q, want %q", cd, wantDisposition)
	}

	// Two generated invoices with two lines each.
	body := strings.TrimPrefix(rec.Body.String(), "\ufeff")
	lines := strings.Split(strings.TrimRight(body, "\r\n"), "\r\n")
	if len(lines) != 5 {
		t.Fatalf("CSV has %d lines, want 5 (header + 4 rows)", len(lines))
	}
	if lines[0] != strings.Join(export.LineColumns, ",") {
		t.Errorf("CSV header = %q, want %q", lines[0], strings.Join(export.LineColumns, ","))
	}

	if len(f.recorder.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(f.recorder.events))
	}
	if got := f.recorder.events[0].Report; got != ReportInvoiceLines {
		t.Errorf("event report = %q, want %q", got, ReportInvoiceLines)
	}
	// Record count is invoices fetched, not rows rendered.
	if got := f.recorder.events[0].RecordCount; got != 2 {
		t.Errorf("event record count = %d, want 2", got)
	}
}

func TestReportHandler_FormatDefaultsToJSON(t *testing.T) {
	f := newReportFixture(t, nil)
	f.upstream.SeedInvoices(1)

	rec := f.get("/reports/invoices/year/2024?realmId=" + testRealm)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusOK)
	}
	if !strings.HasSuffix(rec.Header().Get("Content-Disposition"), `.json"`) {
		t.Errorf("Content-Disposition = %q, want a .json filename", rec.Header().Get("Content-Disposition"))
	}
}

func TestReportHandler_FormatIsCaseInsensitive(t *testing.T) {
	f := newReportFixture(t, nil)
	f.upstream.SeedInvoices(1)

	rec := f.get("/reports/invoices/year/2024?realmId=" + testRealm + "&format=CSV")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
}

func TestReportHandler_InvalidFormat(t *testing.T) {
	f := newReportFixture(t, nil)
	f.upstream.SeedInvoices(1)

	rec := f.get("/reports/invoices/year/2024?realmId=" + testRealm + "&format=xml")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusBadRequest)
	}
	resp := decodeError(t, rec)
	if resp.Error != CodeInvalidFormat {
		t.Errorf("code = %q, want %q", resp.Error, CodeInvalidFormat)
	}
	if len(resp.Allowed) != 2 {
		t.Errorf("allowed = %v, want the two recognized formats", resp.Allowed)
	}

	// Rejected before any fetch: counted, not audited.
	if f.upstream.RequestCount() != 0 {
		t.Errorf("upstream saw %d requests, want 0", f.upstream.RequestCount())
	}
	if len(f.recorder.events) != 0 {
		t.Errorf("recorded %d events, want 0", len(f.recorder.events))
	}
	if f.metrics.calls != 1 || f.metrics.status != CodeInvalidFormat {
		t.Errorf("metrics = %d calls status %q, want 1 call status %q", f.metrics.calls, f.metrics.status, CodeInvalidFormat)
	}
}

func TestReportHandler_InvalidYear(t *testing.T) {
	years := []string{"abc", "99", "12345", "20x4"}

	for _, year := range years {
		t.Run(year, func(t *testing.T) {
			f := newReportFixture(t, nil)

			rec := f.get("/reports/invoices/year/" + year + "?realmId=" + testRealm)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %v, want %v", rec.Code, http.StatusBadRequest)
			}
			resp := decodeError(t, rec)
			if resp.Error != CodeInvalidYear {
				t.Errorf("code = %q, want %q", resp.Error, CodeInvalidYear)
			}
			if f.upstream.RequestCount() != 0 {
				t.Errorf("upstream saw %d requests, want 0", f.upstream.RequestCount())
			}
			if len(f.recorder.events) != 0 {
				t.Errorf("recorded %d events, want 0", len(f.recorder.events))
			}
		})
	}
}

func TestReportHandler_MissingRealm(t *testing.T) {
	f := newReportFixture(t, nil)

	rec := f.get("/reports/invoices/year/2024")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusBadRequest)
	}
	resp := decodeError(t, rec)
	if resp.Error != CodeMissingRealm {
		t.Errorf("code = %q, want %q", resp.Error, CodeMissingRealm)
	}
	if resp.Message == "" {
		t.Error("expected a message naming the missing parameter")
	}
}

func TestReportHandler_Pagination(t *testing.T) {
	f := newReportFixture(t, nil)
	f.upstream.SeedInvoices(120)

	rec := f.get("/reports/invoices/year/2024?realmId=" + testRealm)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var invoices []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &invoices); err != nil {
		t.Fatalf("body is not a JSON array: %v", err)
	}
	if len(invoices) != 120 {
		t.Errorf("exported %d invoices, want 120", len(invoices))
	}

	// Page size 50: two full pages plus the short page that ends the loop.
	if f.upstream.RequestCount() != 3 {
		t.Errorf("upstream saw %d requests, want 3", f.upstream.RequestCount())
	}
	if len(f.recorder.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(f.recorder.events))
	}
	if got := f.recorder.events[0].Pages; got != 3 {
		t.Errorf("event pages = %d, want 3", got)
	}
}

func TestReportHandler_ReconnectRequired(t *testing.T) {
	provider := qbo.TokenProviderFunc(func(ctx context.Context, realmID string) (string, error) {
		return "", tokens.NewReconnectError(realmID, "refresh token expired")
	})
	f := newReportFixture(t, provider)

	rec := f.get("/reports/invoices/year/2024?realmId=" + testRealm)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %v, want %v", rec.Code, http.StatusUnauthorized)
	}
	resp := decodeError(t, rec)
	if resp.Error != CodeReconnectRequired {
		t.Errorf("code = %q, want %q", resp.Error, CodeReconnectRequired)
	}
	if resp.ConnectURL != ConnectPath {
		t.Errorf("connect_url = %q, want %q", resp.ConnectURL, ConnectPath)
	}

	if len(f.recorder.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(f.recorder.events))
	}
	event := f.recorder.events[0]
	if event.Status != audit.StatusFailed {
		t.Errorf("event status = %v, want %v", event.Status, audit.StatusFailed)
	}
	if event.Error == "" {
		t.Error("failed event has no error description")
	}
	if f.metrics.status != CodeReconnectRequired {
		t.Errorf("metrics status = %q, want %q", f.metrics.status, CodeReconnectRequired)
	}
}

func TestReportHandler_UpstreamFailure(t *testing.T) {
	f := newReportFixture(t, nil)
	f.upstream.SeedInvoices(200)
	f.upstream.FailPage(2, http.StatusInternalServerError, `{"fault": {"type": "SYSTEMFAULT"}}`)

	rec := f.get("/reports/invoices/year/2024?realmId=" + testRealm)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %v, want %v (body: %s)", rec.Code, http.StatusBadGateway, rec.Body.String())
	}
	resp := decodeError(t, rec)
	if resp.Error != CodeQueryFailed {
		t.Errorf("code = %q, want %q", resp.Error, CodeQueryFailed)
	}

	// No partial results leak: the failure aborts the whole export.
	if len(f.recorder.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(f.recorder.events))
	}
	event := f.recorder.events[0]
	if event.Status != audit.StatusFailed {
		t.Errorf("event status = %v, want %v", event.Status, audit.StatusFailed)
	}
	if event.Pages != 2 {
		t.Errorf("event pages = %d, want 2 (the failed page counts)", event.Pages)
	}
	if event.RecordCount != 0 {
		t.Errorf("event record count = %d, want 0", event.RecordCount)
	}
	if f.metrics.status != CodeQueryFailed {
		t.Errorf("metrics status = %q, want %q", f.metrics.status, CodeQueryFailed)
	}
}

func TestReportHandler_AuthFailure(t *testing.T) {
	f := newReportFixture(t, nil)
	f.upstream.SeedInvoices(1)
	f.upstream.RequireToken("the-real-token")

	rec := f.get("/reports/invoices/year/2024?realmId=" + testRealm)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %v, want %v (body: %s)", rec.Code, http.StatusInternalServerError, rec.Body.String())
	}
	resp := decodeError(t, rec)
	if resp.Error != CodeAuthFailed {
		t.Errorf("code = %q, want %q", resp.Error, CodeAuthFailed)
	}
	if strings.Contains(resp.Message, "test-token") {
		t.Errorf("message leaks the bearer token: %q", resp.Message)
	}
}

func TestReportHandler_RecorderFailureDoesNotBlockDownload(t *testing.T) {
	f := newReportFixture(t, nil)
	f.upstream.SeedInvoices(2)
	f.recorder.err = errors.New("disk full")

	rec := f.get("/reports/invoices/year/2024?realmId=" + testRealm)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %v, want %v despite the recorder failure", rec.Code, http.StatusOK)
	}
}

func TestReportHandler_NilRecorders(t *testing.T) {
	upstream := qbotest.NewServer()
	t.Cleanup(upstream.Close)
	upstream.SeedInvoices(1)

	client := qbo.NewClient(qbo.ClientConfig{APIBase: upstream.URL()}, qbo.TokenProviderFunc(
		func(ctx context.Context, realmID string) (string, error) { return "t", nil },
	))
	mux := http.NewServeMux()
	mux.Handle("GET "+InvoicesPattern, NewInvoicesHandler(client, nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/reports/invoices/year/2024?realmId="+testRealm, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %v, want %v with nil recorders", rec.Code, http.StatusOK)
	}
}

func TestReportHandler_MethodNotAllowed(t *testing.T) {
	f := newReportFixture(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/reports/invoices/year/2024?realmId="+testRealm, nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %v, want %v", rec.Code, http.StatusMethodNotAllowed)
	}
}
