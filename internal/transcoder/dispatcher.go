package transcoder

import (
	"context"
	"fmt"
	"time"

	"video-renditions/internal/logging"
	"video-renditions/internal/metrics"
	"video-renditions/internal/progress"
	"video-renditions/internal/workers"
)

// DoneFunc receives a job's outcome. It is called exactly once.
type DoneFunc func(RenditionResult, error)

// Dispatcher runs payloads on a bounded pool.
type Dispatcher struct {
	pool      *workers.Pool
	transport Transport
	reporter  progress.Reporter
}

// NewDispatcher returns a Dispatcher. A nil reporter discards progress.
func NewDispatcher(pool *workers.Pool, transport Transport, reporter progress.Reporter) *Dispatcher {
	if reporter == nil {
		reporter = progress.Nop
	}
	return &Dispatcher{
		pool:      pool,
		transport: transport,
		reporter:  reporter,
	}
}

// Dispatch queues p. A failure of one payload never affects another.
// It returns an error, without calling done, only if the pool is closed.
func (d *Dispatcher) Dispatch(p Payload, done DoneFunc) error {
	return d.pool.Submit(func(ctx context.Context) {
		var (
			res RenditionResult
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("transcode panicked: %v", r)
			}
			done(res, err)
		}()
		res, err = d.run(ctx, p)
	})
}

func (d *Dispatcher) run(ctx context.Context, p Payload) (RenditionResult, error) {
	frames := 0
	if p.Source != nil {
		frames = p.Source.Frames
	}
	tracker := d.reporter.Track(p.Args.UserDisplayedName, progress.NewTicker(frames).Total())
	defer tracker.Finish()

	metrics.TranscodesInProgress.Inc()
	defer metrics.TranscodesInProgress.Dec()

	start := time.Now()
	res, err := d.transport.Run(ctx, p, func(delta, _ int) {
		tracker.Tick(delta)
		metrics.TranscodeFramesTotal.Add(float64(delta))
	})
	metrics.TranscodeDuration.WithLabelValues(p.Args.Pipeline).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.TranscodeJobsTotal.WithLabelValues("error").Inc()
		logging.Error("Failed to process video %s (%s): %v", sourcePath(p), p.Args.Pipeline, err)
		return RenditionResult{}, err
	}

	metrics.TranscodeJobsTotal.WithLabelValues("success").Inc()
	logging.Debug("Finished %s in %v", p.Args.UserDisplayedName, time.Since(start))
	return res, nil
}

func sourcePath(p Payload) string {
	if len(p.InputPaths) == 0 {
		return ""
	}
	return p.InputPaths[0].Path
}
