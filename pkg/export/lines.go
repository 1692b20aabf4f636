package export

import (
	"strconv"

	"brightbooks-hq/ledgerport/pkg/qbo"
)

// LineColumns is the fixed header of the invoice-line CSV.
var LineColumns = []string{
	"RealmId",
	"InvoiceId",
	"DocNumber",
	"TxnDate",
	"CustomerId",
	"CustomerName",
	"PurchaseOrderRef",
	"InvoiceMeta_CreateTime",
	"InvoiceMeta_LastUpdatedTime",
	"LineIndex",
	"LineId",
	"DetailType",
	"Amount",
	"Description",
	"ItemId",
	"ItemName",
	"Qty",
	"UnitPrice",
	"TaxCode",
	"Line_json",
	"Invoice_json",
}

// LineRow is one invoice line paired with its parent invoice context.
// The raw Line and Invoice objects ride along so the JSON rendering
// stays lossless; CSV serializes them as compact JSON cells.
type LineRow struct {
	RealmID            string `json:"RealmId"`
	InvoiceID          string `json:"InvoiceId"`
	DocNumber          string `json:"DocNumber"`
	TxnDate            string `json:"TxnDate"`
	CustomerID         string `json:"CustomerId"`
	CustomerName       string `json:"CustomerName"`
	PurchaseOrder      any    `json:"PurchaseOrderRef"`
	InvoiceCreateTime  string `json:"InvoiceMeta_CreateTime"`
	InvoiceUpdatedTime string `json:"InvoiceMeta_LastUpdatedTime"`
	LineIndex          int    `json:"LineIndex"`
	LineID             string `json:"LineId"`
	DetailType         string `json:"DetailType"`
	Amount             any    `json:"Amount"`
	Description        string `json:"Description"`
	ItemID             string `json:"ItemId"`
	ItemName           string `json:"ItemName"`
	Qty                any    `json:"Qty"`
	UnitPrice          any    `json:"UnitPrice"`
	TaxCode            string `json:"TaxCode"`
	Line               any    `json:"Line_json"`
	Invoice            any    `json:"Invoice_json"`
}

// FlattenInvoiceLines returns one row per line of the invoice, indexed
// from 1 in list order. An absent or malformed Line list yields no rows.
func FlattenInvoiceLines(rec qbo.Record, realmID string) []LineRow {
	lines, ok := rec["Line"].([]any)
	if !ok {
		return nil
	}

	var rows []LineRow
	for i, entry := range lines {
		line, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		rows = append(rows, LineRow{
			RealmID:            realmID,
			InvoiceID:          asString(rec["Id"]),
			DocNumber:          asString(rec["DocNumber"]),
			TxnDate:            asString(rec["TxnDate"]),
			CustomerID:         asString(lookup(rec, "CustomerRef", "value")),
			CustomerName:       asString(lookup(rec, "CustomerRef", "name")),
			PurchaseOrder:      emptyIfNil(rec["PurchaseOrderRef"]),
			InvoiceCreateTime:  asString(lookup(rec, "MetaData", "CreateTime")),
			InvoiceUpdatedTime: asString(lookup(rec, "MetaData", "LastUpdatedTime")),
			LineIndex:          i + 1,
			LineID:             asString(line["Id"]),
			DetailType:         asString(line["DetailType"]),
			Amount:             emptyIfNil(line["Amount"]),
			Description:        asString(line["Description"]),
			ItemID:             asString(lookup(line, "SalesItemLineDetail", "ItemRef", "value")),
			ItemName:           asString(lookup(line, "SalesItemLineDetail", "ItemRef", "name")),
			Qty:                emptyIfNil(lookup(line, "SalesItemLineDetail", "Qty")),
			UnitPrice:          emptyIfNil(lookup(line, "SalesItemLineDetail", "UnitPrice")),
			TaxCode:            asString(lookup(line, "SalesItemLineDetail", "TaxCodeRef", "value")),
			Line:               map[string]any(line),
			Invoice:            map[string]any(rec),
		})
	}
	return rows
}

// emptyIfNil keeps absent optional slots as empty strings in rendered
// rows rather than JSON null.
func emptyIfNil(v any) any {
	if v == nil {
		return ""
	}
	return v
}

// cells renders the row in LineColumns order.
func (r LineRow) cells() []string {
	return []string{
		r.RealmID,
		r.InvoiceID,
		r.DocNumber,
		r.TxnDate,
		r.CustomerID,
		r.CustomerName,
		asString(r.PurchaseOrder),
		r.InvoiceCreateTime,
		r.InvoiceUpdatedTime,
		strconv.Itoa(r.LineIndex),
		r.LineID,
		r.DetailType,
		asString(r.Amount),
		r.Description,
		r.ItemID,
		r.ItemName,
		asString(r.Qty),
		asString(r.UnitPrice),
		r.TaxCode,
		compactJSON(r.Line),
		compactJSON(r.Invoice),
	}
}
