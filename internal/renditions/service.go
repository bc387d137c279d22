package renditions

import (
	"context"
	"errors"
	"io"

	"video-renditions/internal/geometry"
	"video-renditions/internal/logging"
	"video-renditions/internal/metrics"
	"video-renditions/internal/pipeline"
	"video-renditions/internal/probe"
	"video-renditions/internal/progress"
	"video-renditions/internal/queue"
	"video-renditions/internal/transcoder"
	"video-renditions/internal/workers"
)

// AggregateResult summarizes every rendition of one source.
type AggregateResult struct {
	AspectRatio           float64                      `json:"aspectRatio"`
	Width                 int                          `json:"width"`
	Height                int                          `json:"height"`
	PresentationMaxWidth  int                          `json:"presentationMaxWidth"`
	PresentationMaxHeight int                          `json:"presentationMaxHeight"`
	Videos                []transcoder.RenditionResult `json:"videos"`
	OriginalName          string                       `json:"originalName"`
}

// Options configures a Service.
type Options struct {
	Queue queue.Config
	// Workers bounds concurrent transcodes; 0 means one per CPU.
	Workers int
	// Transport runs payloads. Required.
	Transport transcoder.Transport
	// Prober reads source geometry. Required.
	Prober probe.Prober
	// Store, when set, persists probes across sessions.
	Store probe.Store
	// Reporter receives progress; nil discards it.
	Reporter progress.Reporter
}

// Service transcodes sources. It is safe for concurrent use.
type Service struct {
	manager *queue.Manager
	pool    *workers.Pool
	cache   *probe.Cache

	cancel  context.CancelFunc
	done    chan struct{}
	closers []io.Closer
}

// New starts a session.
func New(opts Options) (*Service, error) {
	if opts.Transport == nil {
		return nil, errors.New("renditions: transport is required")
	}
	if opts.Prober == nil {
		return nil, errors.New("renditions: prober is required")
	}

	cacheOpts := []probe.CacheOption{probe.WithObserver(metrics.NewProbeObserver())}
	if opts.Store != nil {
		cacheOpts = append(cacheOpts, probe.WithStore(opts.Store))
	}
	cache := probe.NewCache(opts.Prober, cacheOpts...)

	size := workers.Resolve(opts.Workers)
	pool := workers.NewPool(size)
	dispatcher := transcoder.NewDispatcher(pool, opts.Transport, opts.Reporter)
	manager := queue.NewManager(opts.Queue, dispatcher, cache)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		manager: manager,
		pool:    pool,
		cache:   cache,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		manager.Run(ctx)
	}()

	logging.Info("Rendition service started with %d workers", size)
	return s, nil
}

// Manager exposes the queue, e.g. as a metrics.StatsProvider.
func (s *Service) Manager() *queue.Manager {
	return s.manager
}

// Transcode requests every pipeline for source and waits for all of
// them. If any rendition fails, the first failure in pipeline order is
// returned once all have settled.
func (s *Service) Transcode(ctx context.Context, source queue.SourceFile, specs []pipeline.Spec) (*AggregateResult, error) {
	if len(specs) == 0 {
		return nil, &EmptyPipelineListError{Source: source.AbsolutePath}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i := range specs {
		if err := specs[i].Validate(); err != nil {
			return nil, err
		}
	}

	bounds := make([]geometry.Bounds, len(specs))
	for i, spec := range specs {
		bounds[i] = geometry.Bounds{MaxWidth: spec.MaxWidth, MaxHeight: spec.MaxHeight}
	}
	presentation := geometry.Tightest(bounds)

	jobs := make([]*queue.Job, len(specs))
	for i, spec := range specs {
		job, outcome, err := s.manager.Enqueue(ctx, source, spec)
		if err != nil {
			return nil, &RenditionError{Pipeline: spec.Name, Err: err}
		}
		logging.Debug("Rendition %s of %s: %s", spec.Name, source.Base, outcome)
		jobs[i] = job
	}

	videos := make([]transcoder.RenditionResult, len(jobs))
	var firstErr error
	for i, job := range jobs {
		res, err := job.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if firstErr == nil {
				firstErr = &RenditionError{Pipeline: specs[i].Name, Err: err}
			}
			continue
		}
		videos[i] = res
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return Aggregate(source.Base, presentation, videos), nil
}

// Aggregate joins rendition results. Aspect ratio and size come from the
// first rendition.
func Aggregate(originalName string, presentation geometry.Bounds, videos []transcoder.RenditionResult) *AggregateResult {
	res := &AggregateResult{
		PresentationMaxWidth:  presentation.MaxWidth,
		PresentationMaxHeight: presentation.MaxHeight,
		Videos:                videos,
		OriginalName:          originalName,
	}
	if len(videos) > 0 {
		res.AspectRatio = videos[0].AspectRatio
		res.Width = videos[0].Width
		res.Height = videos[0].Height
	}
	return res
}

// Close ends the session: pending jobs fail with queue.ErrClosed, running
// jobs finish, and the probe cache is cleared.
func (s *Service) Close() {
	s.cancel()
	<-s.done
	s.manager.Close()
	s.pool.Close()
	s.cache.Clear()
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			logging.Warn("Failed to close %T: %v", c, err)
		}
	}
	logging.Info("Rendition service stopped")
}
