package progress

import "video-renditions/internal/logging"

// LogReporter writes a debug line each time a job passes a quarter of
// its frames.
type LogReporter struct {
	sink *logging.Sink
}

// NewLogReporter returns a LogReporter writing through sink.
func NewLogReporter(sink *logging.Sink) *LogReporter {
	return &LogReporter{sink: sink}
}

// Track implements Reporter.
func (r *LogReporter) Track(name string, total int) Tracker {
	r.sink.Debug("transcode %s started (%d frames)", name, total)
	return &logTracker{sink: r.sink, name: name, total: total}
}

type logTracker struct {
	sink    *logging.Sink
	name    string
	total   int
	current int
	quarter int
}

func (t *logTracker) Tick(n int) {
	t.current += n
	if t.total <= 0 {
		return
	}
	q := t.current * 4 / t.total
	if q > t.quarter && q < 4 {
		t.quarter = q
		t.sink.Debug("transcode %s %d%%", t.name, q*25)
	}
}

func (t *logTracker) Finish() {
	t.sink.Debug("transcode %s finished", t.name)
}
