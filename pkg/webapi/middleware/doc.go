// Package middleware provides the HTTP middleware for the report API.
//
// The server applies the chain outermost first:
//
//	RecoveryMiddleware    panics become 500s
//	RequestIDMiddleware   correlation IDs in context and headers
//	LoggingMiddleware     one completion log per request
//	CORSMiddleware        cross-origin headers and preflight
//	TimeoutMiddleware     per-request deadline
//
// Recovery sits outside everything so a panic anywhere in the chain is
// caught, and the request ID is established before logging so the
// completion log can carry it.
package middleware
