// Package qbo implements the QuickBooks Online query client and the
// paginated bulk fetcher built on top of it.
//
// # Query Transport
//
// Queries travel to the QBO query endpoint as a GET request with the
// query text carried in the "query" URL parameter:
//
//	GET {apiBase}/v3/company/{realmID}/query?query=<text>&minorversion=75
//
// The query must ride the URL, never the request body. QBO's query parser
// rejects the same statement sent as a POST body with QueryParserError;
// GET-with-parameter is the form the API accepts reliably.
//
// # Pagination
//
// QBO bounds every query response at a maximum page size, so unbounded
// result sets are enumerated with STARTPOSITION/MAXRESULTS windows:
//
//	SELECT * FROM Invoice WHERE ... STARTPOSITION 1 MAXRESULTS 1000
//	SELECT * FROM Invoice WHERE ... STARTPOSITION 1001 MAXRESULTS 1000
//	...
//
// Offsets are 1-indexed and advance by exactly the page size each
// iteration. The loop ends as soon as a page comes back with fewer
// records than requested; that short page (possibly empty) is the sole
// end-of-stream signal. QBO's totalCount field is never consulted.
//
// # Records
//
// Fetched records are kept as Record, an opaque map mirroring the raw
// JSON. Nothing is projected into typed structs at this layer, so the
// JSON export downstream stays lossless and new QBO fields flow through
// untouched.
//
// # Errors
//
// A 401 from the query endpoint becomes an AuthError carrying the raw
// response body. Every other HTTP-level failure, transport error, or
// timeout becomes a QueryError carrying the status code (0 for transport
// failures), response body, and the exact query sent. Neither error ever
// contains the bearer token. A failed page aborts the whole fetch with
// no partial results; there is no retry at this layer.
package qbo
