package metrics

import (
	"sync"
	"time"

	"video-renditions/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current queue statistics
type Stats struct {
	PendingGroups int
	PendingJobs   int
	ActiveJobs    int
	CachedProbes  int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection. Safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	QueuePendingGroups.Set(float64(stats.PendingGroups))
	QueuePendingJobs.Set(float64(stats.PendingJobs))
	QueueActiveJobs.Set(float64(stats.ActiveJobs))
	ProbeCacheEntries.Set(float64(stats.CachedProbes))

	logging.Debug("Metrics collected: groups=%d, pending=%d, active=%d, probes=%d",
		stats.PendingGroups, stats.PendingJobs, stats.ActiveJobs, stats.CachedProbes)
}
