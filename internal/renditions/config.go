package renditions

import (
	"context"
	"fmt"
	"time"

	"video-renditions/internal/database"
	"video-renditions/internal/ffmpeg"
	"video-renditions/internal/filesystem"
	"video-renditions/internal/logging"
	"video-renditions/internal/probe"
	"video-renditions/internal/progress"
	"video-renditions/internal/queue"
	"video-renditions/internal/startup"
	"video-renditions/internal/transcoder"
)

// FromConfig wires a Service from application configuration: ffprobe for
// geometry, an optional sqlite probe store, and either in-process or
// isolated worker transcodes.
func FromConfig(ctx context.Context, cfg *startup.Config, reporter progress.Reporter) (*Service, error) {
	opts := Options{
		Queue: queue.Config{
			OutputDir:  cfg.OutputDir,
			PublicPath: cfg.PublicPath,
			Exists:     filesystem.Exists,
		},
		Workers:  cfg.Workers,
		Prober:   probe.NewFFprobe(cfg.FFprobePath),
		Reporter: reporter,
	}

	if cfg.WorkerBinary != "" {
		opts.Transport = transcoder.NewExecTransport(cfg.WorkerBinary)
	} else {
		worker := transcoder.NewWorker(
			ffmpeg.NewProcessExecutor(cfg.FFmpegPath),
			transcoder.WithDebugFFmpeg(cfg.DebugFFmpeg),
		)
		opts.Transport = transcoder.NewLocalTransport(worker)
	}

	var db *database.Database
	if cfg.ProbeDBPath != "" {
		start := time.Now()
		var err error
		db, err = database.New(ctx, cfg.ProbeDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open probe store: %w", err)
		}
		cached, err := db.CountProbes(ctx)
		if err != nil {
			logging.Warn("Failed to count stored probes: %v", err)
		}
		startup.LogDatabaseInit(time.Since(start), cached)
		db.UpdateDBMetrics()
		opts.Store = db
	}

	s, err := New(opts)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}
	if db != nil {
		s.closers = append(s.closers, db)
	}
	return s, nil
}
