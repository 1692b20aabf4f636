// Package export renders fetched QuickBooks records as downloadable
// JSON or CSV reports.
//
// # Formats
//
// Two formats are recognized, case-insensitively: "json" and "csv".
// Anything else is an InvalidFormatError carrying the allowed set so
// HTTP handlers can echo it back verbatim.
//
// JSON output is lossless: the full record array is serialized with
// two-space indentation, every field intact. CSV output is deliberately
// lossy: each record flattens to the fixed InvoiceColumns set, and
// custom fields that match no known alias are dropped.
//
// # CSV Shape
//
// Every CSV starts with a UTF-8 byte-order marker followed by the exact
// header row, whatever the records contain. Field extraction is
// null-safe throughout: a record missing CustomerRef, BillAddr, or
// MetaData entirely renders empty cells in those columns. Line items,
// tax detail, and linked transactions are not given columns of their
// own; each lands in a single cell as a compact JSON string.
//
// # Reports
//
// Invoices renders one row per invoice. InvoiceLines explodes each
// invoice into one row per line item, carrying parent invoice context
// plus commonly wanted line fields, with the raw line and invoice
// objects attached as JSON cells.
package export
