package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"video-renditions/internal/ffmpeg"
	"video-renditions/internal/geometry"
	"video-renditions/internal/logging"
	"video-renditions/internal/metrics"
	"video-renditions/internal/pipeline"
	"video-renditions/internal/probe"
	"video-renditions/internal/transcoder"
)

// ErrClosed settles jobs still pending when the manager shuts down.
var ErrClosed = errors.New("queue closed")

// Outcome says how Enqueue handled a request.
type Outcome int

const (
	// Enqueued means a new job joined a pending group.
	Enqueued Outcome = iota
	// Deduplicated means an identical job was already pending or running.
	Deduplicated
	// Existing means the output file is already on disk.
	Existing
)

func (o Outcome) String() string {
	switch o {
	case Enqueued:
		return "enqueued"
	case Deduplicated:
		return "deduplicated"
	case Existing:
		return "existing"
	default:
		return "unknown"
	}
}

// Dispatcher runs payloads. transcoder.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(p transcoder.Payload, done transcoder.DoneFunc) error
}

// Prober returns source geometry. probe.Cache implements it.
type Prober interface {
	Probe(ctx context.Context, path, digest string) (probe.Info, error)
}

// Config configures output naming and the existence check.
type Config struct {
	// OutputDir is where renditions are written.
	OutputDir string
	// PublicPath prefixes the Src of every rendition.
	PublicPath string
	// Exists reports whether an output file is already present. Defaults
	// to a stat of the path.
	Exists func(path string) bool
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

type group struct {
	key    string
	source SourceFile
	jobs   []*Job
	byKey  map[string]*Job
}

// Manager owns the pending-group index.
type Manager struct {
	cfg        Config
	dispatcher Dispatcher
	prober     Prober

	mu       sync.Mutex
	groups   map[string]*group
	order    []string
	inflight map[string]*Job
	closed   bool

	wake chan struct{}
}

// NewManager returns a Manager dispatching to d and probing through p.
func NewManager(cfg Config, d Dispatcher, p Prober) *Manager {
	if cfg.Exists == nil {
		cfg.Exists = fileExists
	}
	return &Manager{
		cfg:        cfg,
		dispatcher: d,
		prober:     p,
		groups:     make(map[string]*group),
		inflight:   make(map[string]*Job),
		wake:       make(chan struct{}, 1),
	}
}

// OutputFileName is the rendition file name for source under spec.
func OutputFileName(source SourceFile, spec pipeline.Spec) string {
	return fmt.Sprintf("%s-%s-%s.%s", source.Name, source.ContentDigest, spec.ShortDigest(), spec.FileExtension)
}

// DisplayName is the label shown for a job's progress.
func DisplayName(source SourceFile, spec pipeline.Spec) string {
	return fmt.Sprintf("ffmpeg [%s] - %s -> %s.%s", spec.Name, source.Base, source.Name, spec.FileExtension)
}

// Enqueue requests a rendition of source under spec.
func (m *Manager) Enqueue(ctx context.Context, source SourceFile, spec pipeline.Spec) (*Job, Outcome, error) {
	if source.AbsolutePath == "" || source.ContentDigest == "" {
		return nil, 0, errors.New("source file needs an absolute path and a content digest")
	}
	if err := spec.Validate(); err != nil {
		return nil, 0, err
	}

	name := OutputFileName(source, spec)
	outputPath := filepath.Join(m.cfg.OutputDir, name)
	src := path.Join("/", m.cfg.PublicPath, name)
	key := JobKey(source.AbsolutePath, outputPath)

	if job := m.lookup(key); job != nil {
		metrics.QueueJobsTotal.WithLabelValues(Deduplicated.String()).Inc()
		return job, Deduplicated, nil
	}

	if m.cfg.Exists(outputPath) {
		job := newJob(key, source, spec, outputPath, src)
		job.settle(m.predict(ctx, job), nil)
		metrics.QueueJobsTotal.WithLabelValues(Existing.String()).Inc()
		logging.Debug("Output %s already exists, skipping", outputPath)
		return job, Existing, nil
	}

	job := newJob(key, source, spec, outputPath, src)
	if err := m.prepare(job); err != nil {
		return nil, 0, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, 0, ErrClosed
	}
	if existing := m.lookupLocked(key); existing != nil {
		m.mu.Unlock()
		metrics.QueueJobsTotal.WithLabelValues(Deduplicated.String()).Inc()
		return existing, Deduplicated, nil
	}

	groupKey := EscapeKey(source.AbsolutePath)
	g, ok := m.groups[groupKey]
	if !ok {
		g = &group{key: groupKey, source: source, byKey: make(map[string]*Job)}
		m.groups[groupKey] = g
		m.order = append(m.order, groupKey)
	}
	g.jobs = append(g.jobs, job)
	g.byKey[key] = job
	m.mu.Unlock()

	metrics.QueueJobsTotal.WithLabelValues(Enqueued.String()).Inc()
	if !ok {
		m.signal()
	}
	return job, Enqueued, nil
}

// prepare builds and serializes the job's command.
func (m *Manager) prepare(job *Job) error {
	cmd := ffmpeg.New(nil).Input(job.Source.AbsolutePath)
	cmd, err := job.Spec.Transform.Apply(cmd)
	if err != nil {
		return fmt.Errorf("pipeline %s: %w", job.Spec.Name, err)
	}
	cmd.Output(job.OutputPath)

	desc, err := pipeline.Serialize(cmd)
	if err != nil {
		return fmt.Errorf("pipeline %s: %w", job.Spec.Name, err)
	}
	encoded, err := pipeline.Encode(desc)
	if err != nil {
		return fmt.Errorf("pipeline %s: %w", job.Spec.Name, err)
	}

	job.Descriptor = desc
	job.payload = transcoder.Payload{
		InputPaths: []transcoder.InputPath{{
			Path:          job.Source.AbsolutePath,
			ContentDigest: job.Source.ContentDigest,
		}},
		OutputDir: filepath.Dir(job.OutputPath),
		Args: transcoder.Args{
			UserDisplayedName:  DisplayName(job.Source, job.Spec),
			Pipeline:           job.Spec.Name,
			SerialisedPipeline: encoded,
			MaxHeight:          job.Spec.MaxHeight,
			MaxWidth:           job.Spec.MaxWidth,
			AbsolutePath:       job.OutputPath,
			OriginalName:       job.Source.Base,
			FileExtension:      job.Spec.FileExtension,
			Src:                job.Src,
		},
	}
	return nil
}

// predict computes the result a finished job would have reported.
func (m *Manager) predict(ctx context.Context, job *Job) transcoder.RenditionResult {
	info := m.probe(ctx, job.Source)
	var dims geometry.Dimensions
	if info != nil {
		dims = info.Dimensions()
	}
	size := geometry.Resolve(dims, geometry.Bounds{MaxWidth: job.Spec.MaxWidth, MaxHeight: job.Spec.MaxHeight})
	return transcoder.RenditionResult{
		Width:         size.Width,
		Height:        size.Height,
		AspectRatio:   size.AspectRatio,
		AbsolutePath:  job.OutputPath,
		OriginalName:  job.Source.Base,
		FileExtension: job.Spec.FileExtension,
		Src:           job.Src,
	}
}

// probe returns nil when the source cannot be probed.
func (m *Manager) probe(ctx context.Context, source SourceFile) *probe.Info {
	info, err := m.prober.Probe(ctx, source.AbsolutePath, source.ContentDigest)
	if err != nil {
		logging.Warn("Could not probe %s: %v", source.AbsolutePath, err)
		return nil
	}
	return &info
}

func (m *Manager) lookup(key string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookupLocked(key)
}

func (m *Manager) lookupLocked(key string) *Job {
	if job, ok := m.inflight[key]; ok {
		return job
	}
	for _, g := range m.groups {
		if job, ok := g.byKey[key]; ok {
			return job
		}
	}
	return nil
}

func (m *Manager) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Run drains groups as they appear until ctx ends.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
			m.Drain(ctx)
		}
	}
}

// Drain dispatches every pending group in arrival order and returns once
// they are handed to the dispatcher. It does not wait for jobs to finish.
func (m *Manager) Drain(ctx context.Context) {
	for {
		g := m.take()
		if g == nil {
			return
		}
		m.dispatchGroup(ctx, g)
	}
}

// take removes the oldest group from the index and marks its jobs as
// running.
func (m *Manager) take() *group {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.order) == 0 {
		return nil
	}
	key := m.order[0]
	m.order = m.order[1:]
	g := m.groups[key]
	delete(m.groups, key)
	for _, job := range g.jobs {
		m.inflight[job.Key] = job
	}
	return g
}

func (m *Manager) dispatchGroup(ctx context.Context, g *group) {
	total := len(g.jobs)
	logging.Info("Processing video %s (%d renditions)", g.source.AbsolutePath, total)

	source := m.probe(ctx, g.source)

	var finished int
	var mu sync.Mutex
	onDone := func(job *Job) transcoder.DoneFunc {
		return func(res transcoder.RenditionResult, err error) {
			m.mu.Lock()
			delete(m.inflight, job.Key)
			m.mu.Unlock()

			job.settle(res, err)
			if err != nil {
				logging.Warn("Job %s (%s) failed: %v", job.ID, job.Spec.Name, err)
			}

			mu.Lock()
			finished++
			n := finished
			mu.Unlock()
			logging.Info("Videos finished %d/%d for %s (job %s)", n, total, g.source.Base, job.ID)
		}
	}

	for _, job := range g.jobs {
		p := job.payload
		p.Source = source
		done := onDone(job)
		logging.Debug("Dispatching job %s: %s -> %s", job.ID, job.Spec.Name, job.OutputPath)
		if err := m.dispatcher.Dispatch(p, done); err != nil {
			done(transcoder.RenditionResult{}, fmt.Errorf("dispatch %s: %w", job.Spec.Name, err))
		}
	}
}

// GetStats implements metrics.StatsProvider.
func (m *Manager) GetStats() metrics.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := metrics.Stats{
		PendingGroups: len(m.groups),
		ActiveJobs:    len(m.inflight),
	}
	for _, g := range m.groups {
		stats.PendingJobs += len(g.jobs)
	}
	if c, ok := m.prober.(interface{ Len() int }); ok {
		stats.CachedProbes = c.Len()
	}
	return stats
}

// Close refuses new requests and settles every job still waiting in a
// group with ErrClosed. Jobs already dispatched run to completion.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	groups := m.groups
	m.groups = make(map[string]*group)
	m.order = nil
	m.mu.Unlock()

	for _, g := range groups {
		for _, job := range g.jobs {
			job.settle(transcoder.RenditionResult{}, ErrClosed)
		}
	}
}
