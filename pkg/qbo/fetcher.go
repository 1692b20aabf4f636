package qbo

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// pager tracks the position of a paginated fetch. Offsets are 1-indexed
// and advance by exactly the page size each iteration, regardless of how
// many records the page actually returned.
type pager struct {
	offset   int
	pageSize int
	done     bool
}

func newPager(pageSize int) *pager {
	return &pager{offset: 1, pageSize: pageSize}
}

// statement appends the pagination window to the base query.
func (p *pager) statement(base string) string {
	return fmt.Sprintf("%s STARTPOSITION %d MAXRESULTS %d", base, p.offset, p.pageSize)
}

// advance records a completed page and reports whether another request
// is needed. A batch shorter than the page size is the only end signal;
// response metadata like totalCount is never consulted.
func (p *pager) advance(batchLen int) bool {
	p.offset += p.pageSize
	if batchLen < p.pageSize {
		p.done = true
	}
	return !p.done
}

// FetchAll pages through q until a short page arrives and returns every
// record in arrival order. Pages are fetched sequentially; a fresh token
// is requested from the provider before each one. Any failure aborts the
// whole fetch with no partial results, and nothing is retried.
func (c *Client) FetchAll(ctx context.Context, q Query) ([]Record, error) {
	var records []Record
	p := newPager(c.pageSize)
	pages := 0

	for {
		statement := p.statement(q.Statement)
		slog.Debug("fetching qbo page",
			"realm_id", q.RealmID,
			"entity", q.Entity,
			"offset", p.offset,
			"page_size", p.pageSize)

		start := time.Now()
		batch, err := c.fetchPage(ctx, q, statement)
		c.observePage(pages+1, len(batch), time.Since(start), err)
		if err != nil {
			c.observeDone(pages+1, len(records), err)
			return nil, err
		}
		records = append(records, batch...)
		pages++

		if !p.advance(len(batch)) {
			break
		}
	}

	slog.Debug("qbo fetch complete",
		"realm_id", q.RealmID,
		"entity", q.Entity,
		"records", len(records),
		"pages", pages)
	c.observeDone(pages, len(records), nil)
	return records, nil
}

func (c *Client) observePage(page, records int, d time.Duration, err error) {
	if c.observer != nil {
		c.observer.PageFetched(page, records, d, err)
	}
}

func (c *Client) observeDone(pages, records int, err error) {
	if c.observer != nil {
		c.observer.FetchDone(pages, records, err)
	}
}

// InvoicesForYear builds the invoice query for one calendar year, newest
// transactions first.
func InvoicesForYear(realmID string, year int) Query {
	return Query{
		RealmID: realmID,
		Entity:  "Invoice",
		Statement: fmt.Sprintf(
			"SELECT * FROM Invoice WHERE TxnDate >= '%d-01-01' AND TxnDate <= '%d-12-31' ORDER BY TxnDate DESC",
			year, year),
	}
}
