package progress

import "sync"

// Reporter hands out a Tracker per job.
type Reporter interface {
	Track(name string, total int) Tracker
}

// Tracker receives tick deltas for one job.
type Tracker interface {
	Tick(n int)
	Finish()
}

// Nop discards all progress.
var Nop Reporter = nopReporter{}

type nopReporter struct{}

func (nopReporter) Track(string, int) Tracker { return nopTracker{} }

type nopTracker struct{}

func (nopTracker) Tick(int) {}
func (nopTracker) Finish()  {}

// Multi fans progress out to several reporters.
func Multi(reporters ...Reporter) Reporter {
	return multiReporter(reporters)
}

type multiReporter []Reporter

func (m multiReporter) Track(name string, total int) Tracker {
	trackers := make(multiTracker, 0, len(m))
	for _, r := range m {
		trackers = append(trackers, r.Track(name, total))
	}
	return trackers
}

type multiTracker []Tracker

func (m multiTracker) Tick(n int) {
	for _, t := range m {
		t.Tick(n)
	}
}

func (m multiTracker) Finish() {
	for _, t := range m {
		t.Finish()
	}
}

// Counter is a Reporter that only keeps totals. It is safe for
// concurrent use.
type Counter struct {
	mu       sync.Mutex
	ticks    map[string]int
	totals   map[string]int
	finished map[string]bool
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{
		ticks:    make(map[string]int),
		totals:   make(map[string]int),
		finished: make(map[string]bool),
	}
}

// Track implements Reporter.
func (c *Counter) Track(name string, total int) Tracker {
	c.mu.Lock()
	c.totals[name] = total
	c.mu.Unlock()
	return &counterTracker{c: c, name: name}
}

// Ticks returns the ticks reported for name.
func (c *Counter) Ticks(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks[name]
}

// Total returns the total registered for name.
func (c *Counter) Total(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals[name]
}

// Finished reports whether name's tracker was finished.
func (c *Counter) Finished(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished[name]
}

type counterTracker struct {
	c    *Counter
	name string
}

func (t *counterTracker) Tick(n int) {
	t.c.mu.Lock()
	t.c.ticks[t.name] += n
	t.c.mu.Unlock()
}

func (t *counterTracker) Finish() {
	t.c.mu.Lock()
	t.c.finished[t.name] = true
	t.c.mu.Unlock()
}
