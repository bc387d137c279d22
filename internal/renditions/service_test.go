package renditions

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"video-renditions/internal/ffmpeg"
	"video-renditions/internal/geometry"
	"video-renditions/internal/pipeline"
	"video-renditions/internal/probe"
	"video-renditions/internal/progress"
	"video-renditions/internal/queue"
	"video-renditions/internal/transcoder"
)

// scriptedExecutor succeeds unless an argument contains failOn.
type scriptedExecutor struct {
	mu     sync.Mutex
	runs   int
	failOn string
}

func (e *scriptedExecutor) Execute(ctx context.Context, args []string) <-chan ffmpeg.Event {
	e.mu.Lock()
	e.runs++
	e.mu.Unlock()

	ch := make(chan ffmpeg.Event, 4)
	go func() {
		defer close(ch)
		for _, a := range args {
			if e.failOn != "" && strings.Contains(a, e.failOn) {
				ch <- ffmpeg.Event{Type: ffmpeg.EventError, Err: errors.New("encoder exploded")}
				return
			}
		}
		ch <- ffmpeg.Event{Type: ffmpeg.EventProgress, Percent: 50}
		ch <- ffmpeg.Event{Type: ffmpeg.EventProgress, Percent: 100}
		ch <- ffmpeg.Event{Type: ffmpeg.EventEnd}
	}()
	return ch
}

func (e *scriptedExecutor) Runs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runs
}

type staticProber struct {
	info probe.Info
	err  error
}

func (p staticProber) Probe(ctx context.Context, path string) (probe.Info, error) {
	return p.info, p.err
}

func spec(name string, w, h int) pipeline.Spec {
	return pipeline.Spec{
		Name: name,
		Transform: pipeline.Transform{Operations: []pipeline.Operation{
			{Op: "videoCodec", Args: []string{"libvpx-vp9"}},
		}},
		FileExtension: "webm",
		MaxWidth:      w,
		MaxHeight:     h,
	}
}

func newTestService(t *testing.T, exec *scriptedExecutor, info probe.Info, exists func(string) bool, reporter progress.Reporter) *Service {
	t.Helper()
	s, err := New(Options{
		Queue: queue.Config{
			OutputDir:  t.TempDir(),
			PublicPath: "static",
			Exists:     exists,
		},
		Workers:   2,
		Transport: transcoder.NewLocalTransport(transcoder.NewWorker(exec)),
		Prober:    staticProber{info: info},
		Reporter:  reporter,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func never(string) bool { return false }

func withTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Options{Prober: staticProber{}}); err == nil {
		t.Error("New() without transport should fail")
	}
	exec := &scriptedExecutor{}
	if _, err := New(Options{Transport: transcoder.NewLocalTransport(transcoder.NewWorker(exec))}); err == nil {
		t.Error("New() without prober should fail")
	}
}

func TestTranscodeAggregatesRenditions(t *testing.T) {
	exec := &scriptedExecutor{}
	counter := progress.NewCounter()
	s := newTestService(t, exec, probe.Info{Width: 1920, Height: 1080, Frames: 200}, never, counter)

	source := queue.NewSourceFile("/videos/clip.mp4", "abc123")
	res, err := s.Transcode(withTimeout(t), source, []pipeline.Spec{
		spec("1080p", 1920, 1080),
		spec("360p", 640, 360),
	})
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}

	if res.PresentationMaxWidth != 640 || res.PresentationMaxHeight != 360 {
		t.Errorf("presentation bounds = %dx%d, want 640x360", res.PresentationMaxWidth, res.PresentationMaxHeight)
	}
	if res.Width != 1920 || res.Height != 1080 {
		t.Errorf("size = %dx%d, want first rendition 1920x1080", res.Width, res.Height)
	}
	if res.OriginalName != "clip.mp4" {
		t.Errorf("OriginalName = %q, want clip.mp4", res.OriginalName)
	}
	if len(res.Videos) != 2 {
		t.Fatalf("got %d videos, want 2", len(res.Videos))
	}
	if res.Videos[1].Width != 640 || res.Videos[1].Height != 360 {
		t.Errorf("second rendition = %dx%d, want 640x360", res.Videos[1].Width, res.Videos[1].Height)
	}
	for _, v := range res.Videos {
		if !strings.HasPrefix(v.Src, "/static/clip-abc123-") {
			t.Errorf("Src = %q, want /static/clip-abc123- prefix", v.Src)
		}
	}
	if exec.Runs() != 2 {
		t.Errorf("executor ran %d times, want 2", exec.Runs())
	}
	if got := counter.Total("ffmpeg [360p] - clip.mp4 -> clip.webm"); got != 200 {
		t.Errorf("tracked total = %d, want 200", got)
	}
}

func TestTranscodeExistingOutputsSkipExecutor(t *testing.T) {
	exec := &scriptedExecutor{}
	s := newTestService(t, exec, probe.Info{Width: 1080, Height: 1920}, func(string) bool { return true }, nil)

	res, err := s.Transcode(withTimeout(t), queue.NewSourceFile("/videos/tall.mov", "d1"), []pipeline.Spec{spec("480p", 480, 854)})
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}
	if exec.Runs() != 0 {
		t.Errorf("executor ran %d times, want 0", exec.Runs())
	}
	if res.Width != 480 || res.Height != 853 {
		t.Errorf("predicted size = %dx%d, want 480x853", res.Width, res.Height)
	}
}

func TestTranscodeEmptyPipelineList(t *testing.T) {
	s := newTestService(t, &scriptedExecutor{}, probe.Info{}, never, nil)

	_, err := s.Transcode(withTimeout(t), queue.NewSourceFile("/videos/a.mp4", "x"), nil)
	if !errors.Is(err, ErrEmptyPipelineList) {
		t.Fatalf("error = %v, want ErrEmptyPipelineList", err)
	}
	var empty *EmptyPipelineListError
	if !errors.As(err, &empty) || empty.Source != "/videos/a.mp4" {
		t.Errorf("error = %#v, want source /videos/a.mp4", err)
	}
}

func TestTranscodeInvalidSpecEnqueuesNothing(t *testing.T) {
	exec := &scriptedExecutor{}
	s := newTestService(t, exec, probe.Info{}, never, nil)

	bad := spec("broken", 0, 360)
	_, err := s.Transcode(withTimeout(t), queue.NewSourceFile("/videos/a.mp4", "x"), []pipeline.Spec{spec("ok", 640, 360), bad})
	var verr *pipeline.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *pipeline.ValidationError", err)
	}
	if stats := s.Manager().GetStats(); stats.PendingJobs != 0 {
		t.Errorf("pending jobs = %d, want 0", stats.PendingJobs)
	}
}

func TestTranscodeMalformedOperationIsValidationError(t *testing.T) {
	exec := &scriptedExecutor{}
	s := newTestService(t, exec, probe.Info{}, never, nil)

	bad := spec("bad", 640, 360)
	bad.Transform.Operations = []pipeline.Operation{{Op: "videoCodec"}}
	_, err := s.Transcode(withTimeout(t), queue.NewSourceFile("/videos/a.mp4", "x"), []pipeline.Spec{bad})

	var verr *pipeline.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *pipeline.ValidationError", err)
	}
	var rerr *RenditionError
	if errors.As(err, &rerr) {
		t.Errorf("malformed spec reported as rendition failure: %v", err)
	}
	if exec.Runs() != 0 {
		t.Errorf("executor runs = %d, want 0", exec.Runs())
	}
}

// truncatingExecutor writes part of the output target, then fails on its
// first run. Later runs write the whole file and succeed.
type truncatingExecutor struct {
	mu   sync.Mutex
	runs int
}

func (e *truncatingExecutor) Execute(ctx context.Context, args []string) <-chan ffmpeg.Event {
	e.mu.Lock()
	e.runs++
	first := e.runs == 1
	e.mu.Unlock()

	ch := make(chan ffmpeg.Event, 2)
	go func() {
		defer close(ch)
		target := args[len(args)-1]
		if first {
			_ = os.WriteFile(target, []byte("trunc"), 0o644)
			ch <- ffmpeg.Event{Type: ffmpeg.EventError, Err: errors.New("disk full")}
			return
		}
		_ = os.WriteFile(target, []byte("complete webm"), 0o644)
		ch <- ffmpeg.Event{Type: ffmpeg.EventEnd}
	}()
	return ch
}

func TestTranscodeRetriesAfterFailedRendition(t *testing.T) {
	exec := &truncatingExecutor{}
	s, err := New(Options{
		Queue:     queue.Config{OutputDir: t.TempDir(), PublicPath: "static"},
		Workers:   1,
		Transport: transcoder.NewLocalTransport(transcoder.NewWorker(exec)),
		Prober:    staticProber{info: probe.Info{Width: 1920, Height: 1080, Frames: 100}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.Close)

	source := queue.NewSourceFile("/videos/clip.mp4", "abc")
	specs := []pipeline.Spec{spec("vp9", 640, 360)}

	if _, err := s.Transcode(withTimeout(t), source, specs); err == nil {
		t.Fatal("first Transcode() expected error")
	}

	res, err := s.Transcode(withTimeout(t), source, specs)
	if err != nil {
		t.Fatalf("second Transcode() error = %v", err)
	}
	exec.mu.Lock()
	runs := exec.runs
	exec.mu.Unlock()
	if runs != 2 {
		t.Errorf("executor runs = %d, want 2 (failed output must not count as done)", runs)
	}
	data, err := os.ReadFile(res.Videos[0].AbsolutePath)
	if err != nil || string(data) != "complete webm" {
		t.Errorf("output = %q, %v; want the complete rendition", data, err)
	}
}

func TestTranscodeReportsFirstFailureInPipelineOrder(t *testing.T) {
	exec := &scriptedExecutor{failOn: "libx265"}
	s := newTestService(t, exec, probe.Info{Width: 1280, Height: 720}, never, nil)

	failing := spec("hevc", 640, 360)
	failing.Transform.Operations[0].Args = []string{"libx265"}

	_, err := s.Transcode(withTimeout(t), queue.NewSourceFile("/videos/a.mp4", "x"), []pipeline.Spec{spec("vp9", 640, 360), failing})
	var rerr *RenditionError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *RenditionError", err)
	}
	if rerr.Pipeline != "hevc" {
		t.Errorf("failed pipeline = %q, want hevc", rerr.Pipeline)
	}
	if exec.Runs() != 2 {
		t.Errorf("executor ran %d times, want both renditions attempted", exec.Runs())
	}
}

func TestTranscodeHonoursContext(t *testing.T) {
	s := newTestService(t, &scriptedExecutor{}, probe.Info{}, never, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Transcode(ctx, queue.NewSourceFile("/videos/a.mp4", "x"), []pipeline.Spec{spec("a", 640, 360)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestAggregate(t *testing.T) {
	videos := []transcoder.RenditionResult{
		{Width: 1280, Height: 720, AspectRatio: 16.0 / 9},
		{Width: 640, Height: 360, AspectRatio: 16.0 / 9},
	}
	res := Aggregate("a.mp4", geometry.Bounds{MaxWidth: 640, MaxHeight: 360}, videos)
	if res.Width != 1280 || res.Height != 720 || res.AspectRatio != 16.0/9 {
		t.Errorf("Aggregate() = %+v, want first rendition geometry", res)
	}

	empty := Aggregate("a.mp4", geometry.Bounds{}, nil)
	if empty.Width != 0 || empty.AspectRatio != 0 {
		t.Errorf("Aggregate(nil) = %+v, want zero geometry", empty)
	}
}
