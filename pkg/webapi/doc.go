// Package webapi implements the HTTP surface of the export service:
// the report download endpoints, the OAuth connect flow, and the error
// envelope every handler speaks.
//
// # Routes
//
// Handlers in this package serve four routes:
//
//	GET /reports/invoices/year/{year}?realmId=...&format=json|csv
//	GET /reports/invoice_lines_all/year/{year}?realmId=...&format=json|csv
//	GET /connect
//	GET /oauth/callback?code=...&realmId=...&state=...
//
// The report endpoints stream a file download: Content-Disposition
// names the file after the report, year, and realm, and the body is the
// serialized export. The connect pair drives the Intuit consent screen;
// a successful callback answers with the connected realm and nothing
// else. Access and refresh tokens never appear in any response.
//
// # Error Envelope
//
// Every error response is a flat JSON object with a stable machine
// code and optional human context:
//
//	{"error": "invalid_format", "message": "...", "allowed": ["json", "csv"]}
//	{"error": "reconnect_required", "connect_url": "/connect"}
//
// ExportErrorResponse maps the typed errors raised by the token
// manager, the QBO client, and the serializers onto this envelope.
// Errors it does not recognize collapse to internal_error with a
// generic message, so upstream response bodies are never echoed to
// callers.
//
// # Handler Shape
//
// Each handler is a struct created by a New*Handler constructor and
// implementing http.Handler. Dependencies arrive as interfaces
// (Connector, ExportRecorder, MetricsRecorder) so tests can substitute
// fakes; nil recorders simply disable recording. Method filtering is
// the router's job, via method-qualified mux patterns.
package webapi
