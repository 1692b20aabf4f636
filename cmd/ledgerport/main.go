// BrightBooks LedgerPort exports QuickBooks Online invoice data as
// yearly report downloads.
//
// It runs an HTTP server that connects to QuickBooks companies over
// OAuth2 and streams invoice reports as CSV or JSON, providing:
//   - Yearly invoice and invoice-line report downloads
//   - OAuth2 connect/callback flow with automatic token refresh
//   - Paginated bulk fetching against the QBO query API
//   - Audit trail of every export attempt
//   - Prometheus metrics and health endpoints
//
// Usage:
//
//	# Start server with default configuration
//	ledgerport run
//
//	# Start with custom configuration file
//	ledgerport run --config /path/to/config.yaml
//
//	# Show version information
//	ledgerport version
//
//	# One-shot export to a file without the server
//	ledgerport export --realm 4620816365214 --year 2024 --format csv -o invoices.csv
//
//	# Query the export audit trail
//	ledgerport history query --time-range "2026-01-01T00:00:00Z/2026-02-01T00:00:00Z"
//
// For complete documentation, see: https://github.com/brightbooks-hq/ledgerport
package main

func main() {
	Execute()
}
