package handlers

import (
	"context"
	"sync/atomic"
	"time"

	"video-renditions/internal/filesystem"
	"video-renditions/internal/metrics"
	"video-renditions/internal/pipeline"
	"video-renditions/internal/queue"
	"video-renditions/internal/renditions"
)

// Transcoder builds every rendition of a source.
type Transcoder interface {
	Transcode(ctx context.Context, source queue.SourceFile, specs []pipeline.Spec) (*renditions.AggregateResult, error)
}

type Handlers struct {
	transcoder Transcoder
	presets    *pipeline.Presets
	stats      metrics.StatsProvider

	// Replaced in tests.
	exists func(path string) bool
	digest func(path string) (string, error)

	startTime    time.Time
	shuttingDown atomic.Bool
}

// New returns handlers serving t. presets and stats may be nil.
func New(t Transcoder, presets *pipeline.Presets, stats metrics.StatsProvider) *Handlers {
	return &Handlers{
		transcoder: t,
		presets:    presets,
		stats:      stats,
		exists:     filesystem.Exists,
		digest:     filesystem.ContentDigest,
		startTime:  time.Now(),
	}
}

// SetShuttingDown makes readiness checks fail so load balancers drain the
// instance before it stops.
func (h *Handlers) SetShuttingDown() {
	h.shuttingDown.Store(true)
}
