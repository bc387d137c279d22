package progress

import "math"

// DefaultTotal is used when the source frame count is unknown.
const DefaultTotal = 100

// Ticker converts percentages into frame tick deltas for a single job.
type Ticker struct {
	total int
	last  int
}

// NewTicker returns a Ticker for a job of frames frames. Non-positive
// counts fall back to DefaultTotal.
func NewTicker(frames int) *Ticker {
	if frames <= 0 {
		frames = DefaultTotal
	}
	return &Ticker{total: frames}
}

// Total is the frame count the ticker reports against.
func (t *Ticker) Total() int {
	return t.total
}

// Current is the number of ticks reported so far.
func (t *Ticker) Current() int {
	return t.last
}

// Advance records percent and returns how many new frames it represents.
// Repeated or decreasing percentages return 0.
func (t *Ticker) Advance(percent float64) int {
	if math.IsNaN(percent) {
		return 0
	}
	current := int(math.Floor(percent / 100 * float64(t.total)))
	if current > t.total {
		current = t.total
	}
	if current <= t.last {
		return 0
	}
	delta := current - t.last
	t.last = current
	return delta
}

// Remaining returns the ticks not yet reported and marks the job complete.
func (t *Ticker) Remaining() int {
	delta := t.total - t.last
	t.last = t.total
	return delta
}
