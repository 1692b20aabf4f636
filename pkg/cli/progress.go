package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// PageProgress reports paged fetch progress as one line per page. It
// implements the fetch observer contract of the qbo client, so wiring
// it up is a single WithObserver call. Lines go to stderr by default,
// keeping stdout clean for exported data.
type PageProgress struct {
	mu      sync.Mutex
	writer  io.Writer
	started time.Time
	records int
}

// NewPageProgress creates a progress reporter that writes to w.
// If w is nil, it defaults to os.Stderr.
func NewPageProgress(w io.Writer) *PageProgress {
	if w == nil {
		w = os.Stderr
	}
	return &PageProgress{
		writer:  w,
		started: time.Now(),
	}
}

// PageFetched reports one completed page request.
func (p *PageProgress) PageFetched(page, records int, duration time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		fmt.Fprintf(p.writer, "page %d: failed after %s: %v\n", page, roundDuration(duration), err)
		return
	}

	p.records += records
	fmt.Fprintf(p.writer, "page %d: %d records (%s)\n", page, records, roundDuration(duration))
}

// FetchDone reports the end of a fetch with its totals.
func (p *PageProgress) FetchDone(pages, records int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := roundDuration(time.Since(p.started))
	if err != nil {
		fmt.Fprintf(p.writer, "fetch failed after %d page(s) in %s\n", pages, elapsed)
		return
	}

	fmt.Fprintf(p.writer, "fetched %d records in %d page(s) (%s)\n", records, pages, elapsed)
}

func roundDuration(d time.Duration) time.Duration {
	if d >= time.Second {
		return d.Round(100 * time.Millisecond)
	}
	return d.Round(time.Millisecond)
}
