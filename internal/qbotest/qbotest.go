// Package qbotest provides a fake QuickBooks Online query endpoint for
// tests. The server understands the pagination clauses the query client
// appends to statements and slices a seeded invoice list accordingly,
// so paginated fetches against it behave like the real API.
package qbotest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// Server is a fake QBO query API backed by httptest.
type Server struct {
	server *httptest.Server

	mu           sync.Mutex
	invoices     []map[string]any
	requestCount int
	statements   []string
	realms       []string
	failPage     int
	failStatus   int
	failBody     string
	requireToken string
	delay        time.Duration
}

// NewServer starts a fake query server with no invoices seeded.
func NewServer() *Server {
	s := &Server{}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the server's base URL, suitable for ClientConfig.APIBase.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// SetInvoices replaces the invoice list served by the query endpoint.
func (s *Server) SetInvoices(invoices []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = invoices
}

// SeedInvoices replaces the invoice list with n generated invoices.
func (s *Server) SeedInvoices(n int) {
	s.SetInvoices(GenerateInvoices(n))
}

// FailPage makes the given 1-indexed page request fail with the status
// and body. Page 0 disables failure injection.
func (s *Server) FailPage(page, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPage = page
	s.failStatus = status
	s.failBody = body
}

// RequireToken rejects requests whose bearer token differs from token
// with a 401. An empty token accepts anything.
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireToken = token
}

// SetDelay makes every request sleep before responding.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// RequestCount returns the number of query requests received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestCount
}

// Statements returns every statement received, in arrival order.
func (s *Server) Statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statements...)
}

// Realms returns the realm ID of every query received, in arrival order.
func (s *Server) Realms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.realms...)
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	statement := r.URL.Query().Get("query")
	realm := realmFromPath(r.URL.Path)

	s.mu.Lock()
	s.requestCount++
	s.statements = append(s.statements, statement)
	s.realms = append(s.realms, realm)
	invoices := s.invoices
	failPage, failStatus, failBody := s.failPage, s.failStatus, s.failBody
	requireToken := s.requireToken
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if realm == "" {
		http.NotFound(w, r)
		return
	}

	if requireToken != "" && r.Header.Get("Authorization") != "Bearer "+requireToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"fault": {"type": "AUTHENTICATION"}}`))
		return
	}

	start, max, err := paginationWindow(statement)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprintf(w, `{"Fault": {"Error": [{"Message": %q}], "type": "ValidationFault"}}`, err.Error())
		return
	}

	page := (start-1)/max + 1
	if failPage > 0 && page >= failPage {
		w.WriteHeader(failStatus)
		_, _ = w.Write([]byte(failBody))
		return
	}

	batch := sliceBatch(invoices, start, max)
	envelope := map[string]any{
		"QueryResponse": map[string]any{
			"Invoice":       batch,
			"startPosition": start,
			"maxResults":    len(batch),
		},
		"time": time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope)
}

// realmFromPath extracts the realm ID from /v3/company/{realm}/query.
func realmFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 || parts[0] != "v3" || parts[1] != "company" || parts[3] != "query" {
		return ""
	}
	return parts[2]
}

// paginationWindow parses the STARTPOSITION and MAXRESULTS clauses.
func paginationWindow(statement string) (start, max int, err error) {
	idx := strings.Index(statement, "STARTPOSITION")
	if idx < 0 {
		return 0, 0, fmt.Errorf("statement has no pagination clause: %q", statement)
	}
	if _, err := fmt.Sscanf(statement[idx:], "STARTPOSITION %d MAXRESULTS %d", &start, &max); err != nil {
		return 0, 0, fmt.Errorf("malformed pagination clause in %q: %v", statement, err)
	}
	if start < 1 || max < 1 {
		return 0, 0, fmt.Errorf("pagination window out of range: start %d, max %d", start, max)
	}
	return start, max, nil
}

func sliceBatch(invoices []map[string]any, start, max int) []map[string]any {
	if start > len(invoices) {
		return []map[string]any{}
	}
	end := start - 1 + max
	if end > len(invoices) {
		end = len(invoices)
	}
	return invoices[start-1 : end]
}

// GenerateInvoices builds n invoices with the fields the flatteners
// read: identifiers, customer and meta blocks, a purchase-order custom
// field, and a line array with one sales item line plus the subtotal
// line QBO always appends.
func GenerateInvoices(n int) []map[string]any {
	invoices := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		amount := 150.0 + float64(i)
		invoices = append(invoices, map[string]any{
			"Id":        fmt.Sprintf("%d", i),
			"DocNumber": fmt.Sprintf("INV-%05d", i),
			"TxnDate":   fmt.Sprintf("2024-%02d-15", (i-1)%12+1),
			"TotalAmt":  amount,
			"Balance":   0.0,
			"CurrencyRef": map[string]any{
				"value": "USD",
				"name":  "United States Dollar",
			},
			"CustomerRef": map[string]any{
				"value": fmt.Sprintf("%d", 100+i%7),
				"name":  fmt.Sprintf("Customer %d", 100+i%7),
			},
			"BillEmail": map[string]any{
				"Address": fmt.Sprintf("billing%d@example.com", 100+i%7),
			},
			"MetaData": map[string]any{
				"CreateTime":      "2024-06-01T10:00:00-07:00",
				"LastUpdatedTime": "2024-06-02T10:00:00-07:00",
			},
			"CustomField": []any{
				map[string]any{
					"DefinitionId": "1",
					"Name":         "P.O. Number",
					"Type":         "StringType",
					"StringValue":  fmt.Sprintf("PO-%04d", i),
				},
			},
			"Line": []any{
				map[string]any{
					"Id":          "1",
					"LineNum":     1.0,
					"DetailType":  "SalesItemLineDetail",
					"Amount":      amount,
					"Description": fmt.Sprintf("Consulting hours, engagement %d", i),
					"SalesItemLineDetail": map[string]any{
						"ItemRef": map[string]any{
							"value": "11",
							"name":  "Consulting",
						},
						"Qty":       2.0,
						"UnitPrice": amount / 2,
						"TaxCodeRef": map[string]any{
							"value": "NON",
						},
					},
				},
				map[string]any{
					"DetailType":         "SubTotalLineDetail",
					"Amount":             amount,
					"SubTotalLineDetail": map[string]any{},
				},
			},
		})
	}
	return invoices
}
