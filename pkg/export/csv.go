package export

import (
	"bytes"
	"encoding/csv"

	"brightbooks-hq/ledgerport/pkg/qbo"
)

// utf8BOM marks CSV output as UTF-8 so spreadsheet tools decode it
// correctly instead of guessing a legacy code page.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// marshalInvoicesCSV renders records as the fixed-column invoice CSV,
// one row per record in input order.
func marshalInvoicesCSV(records []qbo.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(InvoiceColumns); err != nil {
		return nil, NewSerializationError(err)
	}
	for _, rec := range records {
		if err := w.Write(invoiceRow(rec)); err != nil {
			return nil, NewSerializationError(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, NewSerializationError(err)
	}
	return buf.Bytes(), nil
}

// marshalLinesCSV renders flattened line rows as CSV.
func marshalLinesCSV(rows []LineRow) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(LineColumns); err != nil {
		return nil, NewSerializationError(err)
	}
	for _, row := range rows {
		if err := w.Write(row.cells()); err != nil {
			return nil, NewSerializationError(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, NewSerializationError(err)
	}
	return buf.Bytes(), nil
}
