package export

import (
	"fmt"
	"strings"

	"brightbooks-hq/ledgerport/pkg/qbo"
)

// Format identifies an output rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat recognizes a format value case-insensitively. Anything
// outside the allowed set is an InvalidFormatError.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", NewInvalidFormatError(s)
	}
}

// ContentType returns the MIME type for download responses.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	default:
		return "application/json"
	}
}

// Extension returns the filename extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Export is a rendered report ready to hand to a download response.
type Export struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Invoices renders raw invoice records in the requested format. JSON
// keeps every field of every record; CSV flattens each record to the
// fixed InvoiceColumns set. Record order is preserved either way.
func Invoices(records []qbo.Record, format Format, year int, realmID string) (*Export, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = marshalRecordsJSON(records)
	case FormatCSV:
		data, err = marshalInvoicesCSV(records)
	default:
		return nil, NewInvalidFormatError(string(format))
	}
	if err != nil {
		return nil, err
	}

	return &Export{
		Data:        data,
		Filename:    fmt.Sprintf("invoices_%d_%s.%s", year, realmID, format.Extension()),
		ContentType: format.ContentType(),
	}, nil
}

// InvoiceLines flattens every invoice into per-line rows and renders
// them in the requested format.
func InvoiceLines(records []qbo.Record, format Format, year int, realmID string) (*Export, error) {
	var rows []LineRow
	for _, rec := range records {
		rows = append(rows, FlattenInvoiceLines(rec, realmID)...)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = marshalLinesJSON(rows)
	case FormatCSV:
		data, err = marshalLinesCSV(rows)
	default:
		return nil, NewInvalidFormatError(string(format))
	}
	if err != nil {
		return nil, err
	}

	return &Export{
		Data:        data,
		Filename:    fmt.Sprintf("invoice_lines_all_%d_%s.%s", year, realmID, format.Extension()),
		ContentType: format.ContentType(),
	}, nil
}
