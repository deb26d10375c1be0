// Package progress shows a progress bar while messages are fetched.
package progress

import (
	"io"
	"sync"

	"github.com/pterm/pterm"
)

// Bar tracks fetched messages. A disabled Bar is a no-op, so callers do
// not need to check whether output is interactive.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	mu      sync.Mutex
	enabled bool
}

// New starts a bar over total steps writing to w. It is disabled when
// enabled is false or there is nothing to count.
func New(w io.Writer, total int, title string, enabled bool) *Bar {
	bar := &Bar{
		total:   total,
		enabled: enabled && total > 0,
	}
	if !bar.enabled {
		return bar
	}

	pb, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithWriter(w).
		Start()
	if err != nil {
		bar.enabled = false
		return bar
	}
	bar.pb = pb
	return bar
}

func (b *Bar) Increment() {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.pb.Increment()
}

// Stop finalizes the bar. Safe to call more than once.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pb.Current < b.total {
		b.pb.Current = b.total
	}
	b.pb.Stop()
	b.pb = nil
}

func (b *Bar) Enabled() bool {
	return b.enabled
}
