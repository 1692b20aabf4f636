package webapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"brightbooks-hq/ledgerport/pkg/audit"
	"brightbooks-hq/ledgerport/pkg/export"
	"brightbooks-hq/ledgerport/pkg/qbo"
	"brightbooks-hq/ledgerport/pkg/telemetry/logging"
)

// Report names as they appear in audit events.
const (
	ReportInvoices     = "invoices"
	ReportInvoiceLines = "invoice_lines_all"
)

// Route patterns for the report downloads. The server registers them
// with the GET method so the mux rejects everything else.
const (
	InvoicesPattern     = "/reports/invoices/year/{year}"
	InvoiceLinesPattern = "/reports/invoice_lines_all/year/{year}"
)

// renderFunc renders fetched records into a download payload.
type renderFunc func(records []qbo.Record, format export.Format, year int, realmID string) (*export.Export, error)

// ReportHandler serves one report route: it validates the request,
// fetches every page of the year's invoices, renders the requested
// format, and answers with an attachment download. Every attempt that
// reaches the fetch stage produces an audit event.
type ReportHandler struct {
	Client   *qbo.Client
	Recorder ExportRecorder
	Metrics  MetricsRecorder

	report string
	render renderFunc
}

// NewInvoicesHandler serves raw invoice exports.
func NewInvoicesHandler(client *qbo.Client, rec ExportRecorder, metrics MetricsRecorder) *ReportHandler {
	return &ReportHandler{
		Client:   client,
		Recorder: rec,
		Metrics:  metrics,
		report:   ReportInvoices,
		render:   export.Invoices,
	}
}

// NewInvoiceLinesHandler serves per-line invoice exports.
func NewInvoiceLinesHandler(client *qbo.Client, rec ExportRecorder, metrics MetricsRecorder) *ReportHandler {
	return &ReportHandler{
		Client:   client,
		Recorder: rec,
		Metrics:  metrics,
		report:   ReportInvoiceLines,
		render:   export.InvoiceLines,
	}
}

// pageCounter keeps the page total of a single fetch for its audit
// event. FetchAll calls it from the request goroutine, so no locking.
type pageCounter struct {
	pages int
}

func (pc *pageCounter) PageFetched(page, records int, duration time.Duration, err error) {}

func (pc *pageCounter) FetchDone(pages, records int, err error) {
	pc.pages = pages
}

// ServeHTTP implements http.Handler.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	// Validation comes before any fetch. Rejections are counted but not
	// audited; only attempts that reach the fetch stage leave an event.
	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = "json"
	}
	format, err := export.ParseFormat(formatParam)
	if err != nil {
		status, resp := ExportErrorResponse(err)
		h.countExport(formatParam, resp.Error, time.Since(started), 0, 0)
		WriteError(w, status, resp)
		return
	}

	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1000 || year > 9999 {
		h.countExport(string(format), CodeInvalidYear, time.Since(started), 0, 0)
		WriteError(w, http.StatusBadRequest, ErrorResponse{
			Error:   CodeInvalidYear,
			Message: "year must be a four digit number",
		})
		return
	}

	realmID := r.URL.Query().Get("realmId")
	if realmID == "" {
		h.countExport(string(format), CodeMissingRealm, time.Since(started), 0, 0)
		WriteError(w, http.StatusBadRequest, ErrorResponse{
			Error:   CodeMissingRealm,
			Message: "realmId query parameter is required",
		})
		return
	}

	ctx := logging.WithRealmID(r.Context(), realmID)
	event := audit.NewEvent(logging.GetRequestID(ctx), realmID, year, h.report, string(format))
	counter := &pageCounter{}

	records, err := h.Client.WithObserver(counter).FetchAll(ctx, qbo.InvoicesForYear(realmID, year))
	if err != nil {
		event.Pages = counter.pages
		h.fail(w, ctx, event, err)
		return
	}

	payload, err := h.render(records, format, year, realmID)
	if err != nil {
		event.Pages = counter.pages
		event.RecordCount = len(records)
		h.fail(w, ctx, event, err)
		return
	}

	event.Complete(len(records), counter.pages, int64(len(payload.Data)))
	h.recordEvent(ctx, event)
	h.countExport(string(format), "success", event.Duration, len(payload.Data), len(records))

	logging.FromContext(ctx).Info("export completed",
		"report", h.report,
		"year", year,
		"format", string(format),
		"records", len(records),
		"pages", counter.pages,
		"bytes", len(payload.Data),
		"duration_ms", event.Duration.Milliseconds(),
	)

	w.Header().Set("Content-Type", payload.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload.Data)))
	_, _ = w.Write(payload.Data)
}

// fail finishes the audit event, counts the outcome, and writes the
// mapped error response.
func (h *ReportHandler) fail(w http.ResponseWriter, ctx context.Context, event *audit.ExportEvent, err error) {
	event.Fail(err)
	h.recordEvent(ctx, event)

	status, resp := ExportErrorResponse(err)
	h.countExport(event.Format, resp.Error, event.Duration, 0, event.RecordCount)

	logging.FromContext(ctx).Error("export failed",
		"report", h.report,
		"year", event.Year,
		"format", event.Format,
		"status", status,
		"code", resp.Error,
		"error", err,
	)

	WriteError(w, status, resp)
}

func (h *ReportHandler) recordEvent(ctx context.Context, event *audit.ExportEvent) {
	if h.Recorder == nil {
		return
	}
	if err := h.Recorder.Record(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to record export event",
			"event_id", event.ID,
			"error", err,
		)
	}
}

func (h *ReportHandler) countExport(format, status string, duration time.Duration, sizeBytes, records int) {
	if h.Metrics == nil {
		return
	}
	h.Metrics.RecordExport(format, status, duration, sizeBytes, records)
}
