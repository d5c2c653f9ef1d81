package preview

import "time"

// DefaultWindow is the quiet period before a burst of edits is rendered.
const DefaultWindow = 300 * time.Millisecond

// Ticket identifies one scheduled debounce timer.
type Ticket struct {
	Tag    uint64
	Window time.Duration
}

// Debouncer keeps at most one live timer. Scheduling again supersedes the
// previous ticket; only the latest ticket may fire, and only once.
type Debouncer struct {
	Window  time.Duration
	tag     uint64
	pending bool
}

// NewDebouncer returns a scheduler with the given window, or DefaultWindow.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{Window: window}
}

// Schedule starts a new timer and cancels any outstanding one.
func (d *Debouncer) Schedule() Ticket {
	d.tag++
	d.pending = true
	return Ticket{Tag: d.tag, Window: d.Window}
}

// Fire reports whether t is the surviving timer and consumes it.
func (d *Debouncer) Fire(t Ticket) bool {
	if !d.pending || t.Tag != d.tag {
		return false
	}
	d.pending = false
	return true
}

// Pending reports whether a timer is outstanding.
func (d *Debouncer) Pending() bool {
	return d.pending
}

// Cancel drops the outstanding timer, if any.
func (d *Debouncer) Cancel() {
	d.pending = false
}
