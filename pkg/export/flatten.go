package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"brightbooks-hq/ledgerport/pkg/qbo"
)

// InvoiceColumns is the fixed header of the invoice CSV. Every export
// emits all of them in this order regardless of which fields any record
// actually carries.
var InvoiceColumns = []string{
	"Id",
	"SyncToken",
	"DocNumber",
	"TxnDate",
	"DueDate",
	"TotalAmt",
	"Balance",
	"ExchangeRate",
	"PrivateNote",
	"GlobalTaxCalculation",
	"PrintStatus",
	"EmailStatus",
	"CustomerId",
	"CustomerName",
	"CurrencyCode",
	"CurrencyName",
	"CreateTime",
	"LastUpdatedTime",
	"LastModifiedBy",
	"BillAddr_Line1",
	"BillAddr_City",
	"BillAddr_CountrySubDivisionCode",
	"BillAddr_PostalCode",
	"ShipAddr_Line1",
	"ShipAddr_City",
	"ShipAddr_CountrySubDivisionCode",
	"ShipAddr_PostalCode",
	"BillEmail",
	"PONumber",
	"SalesRep",
	"Line_json",
	"TxnTaxDetail_json",
	"LinkedTxn_json",
}

// Custom field names are trimmed and lowercased before matching.
var poAliases = map[string]bool{
	"po":                    true,
	"po#":                   true,
	"po number":             true,
	"purchase order":        true,
	"purchase order number": true,
}

var salesRepAliases = map[string]bool{
	"rep":                  true,
	"salesrep":             true,
	"sales rep":            true,
	"sales representative": true,
}

// lookup walks nested maps along path and returns the value at the end.
// It returns nil the moment any step is missing or not an object, so
// callers never have to guard intermediate nodes.
func lookup(rec map[string]any, path ...string) any {
	var cur any = rec
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// asString renders a decoded JSON value as one CSV cell. Absent values
// become empty strings.
func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		// A structured value in a scalar column still renders rather
		// than aborting the row.
		return compactJSON(v)
	}
}

// compactJSON serializes a nested value as a compact JSON string, or ""
// when the value is absent.
func compactJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// truthy reports whether a decoded JSON value counts as present for
// custom-field slot fallback. Empty strings and zero numbers do not,
// so they fall through to the next slot.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0
	case bool:
		return x
	default:
		return true
	}
}

// customFieldValue resolves a custom field's value by taking the first
// truthy slot in priority order.
func customFieldValue(field map[string]any) string {
	for _, slot := range [...]string{"StringValue", "NumberValue", "Value"} {
		if v := field[slot]; truthy(v) {
			return asString(v)
		}
	}
	return ""
}

// customFields scans the record's custom-field list for purchase-order
// and sales-rep entries. Entries are visited in list order and later
// matches overwrite earlier ones; unmatched fields are dropped from the
// tabular view.
func customFields(rec qbo.Record) (poNumber, salesRep string) {
	fields, ok := rec["CustomField"].([]any)
	if !ok {
		return "", ""
	}

	for _, entry := range fields {
		field, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(asString(field["Name"])))
		switch {
		case poAliases[name]:
			poNumber = customFieldValue(field)
		case salesRepAliases[name]:
			salesRep = customFieldValue(field)
		}
	}
	return poNumber, salesRep
}

// invoiceRow flattens one record into InvoiceColumns order. Every
// extraction is null-safe; a record missing whole sections produces
// empty cells, never an error.
func invoiceRow(rec qbo.Record) []string {
	poNumber, salesRep := customFields(rec)

	return []string{
		asString(rec["Id"]),
		asString(rec["SyncToken"]),
		asString(rec["DocNumber"]),
		asString(rec["TxnDate"]),
		asString(rec["DueDate"]),
		asString(rec["TotalAmt"]),
		asString(rec["Balance"]),
		asString(rec["ExchangeRate"]),
		asString(rec["PrivateNote"]),
		asString(rec["GlobalTaxCalculation"]),
		asString(rec["PrintStatus"]),
		asString(rec["EmailStatus"]),
		asString(lookup(rec, "CustomerRef", "value")),
		asString(lookup(rec, "CustomerRef", "name")),
		asString(lookup(rec, "CurrencyRef", "value")),
		asString(lookup(rec, "CurrencyRef", "name")),
		asString(lookup(rec, "MetaData", "CreateTime")),
		asString(lookup(rec, "MetaData", "LastUpdatedTime")),
		asString(lookup(rec, "MetaData", "LastModifiedByRef", "value")),
		asString(lookup(rec, "BillAddr", "Line1")),
		asString(lookup(rec, "BillAddr", "City")),
		asString(lookup(rec, "BillAddr", "CountrySubDivisionCode")),
		asString(lookup(rec, "BillAddr", "PostalCode")),
		asString(lookup(rec, "ShipAddr", "Line1")),
		asString(lookup(rec, "ShipAddr", "City")),
		asString(lookup(rec, "ShipAddr", "CountrySubDivisionCode")),
		asString(lookup(rec, "ShipAddr", "PostalCode")),
		asString(lookup(rec, "BillEmail", "Address")),
		poNumber,
		salesRep,
		compactJSON(rec["Line"]),
		compactJSON(rec["TxnTaxDetail"]),
		compactJSON(rec["LinkedTxn"]),
	}
}
