package transcoder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"video-renditions/internal/ffmpeg"
	"video-renditions/internal/probe"
	"video-renditions/internal/progress"
	"video-renditions/internal/workers"
)

// scriptedTransport fails payloads whose pipeline name starts with
// "fail" and records peak concurrency.
type scriptedTransport struct {
	running atomic.Int32
	peak    atomic.Int32
	delay   time.Duration
}

func (s *scriptedTransport) Run(ctx context.Context, p Payload, onTick TickFunc) (RenditionResult, error) {
	n := s.running.Add(1)
	defer s.running.Add(-1)
	for {
		old := s.peak.Load()
		if n <= old || s.peak.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(s.delay)

	if strings.HasPrefix(p.Args.Pipeline, "fail") {
		return RenditionResult{}, errors.New("encoder exploded")
	}
	if onTick != nil {
		onTick(100, 100)
	}
	return RenditionResult{Src: p.Args.Src}, nil
}

type outcome struct {
	res RenditionResult
	err error
}

func TestDispatcherSettlesJobsIndependently(t *testing.T) {
	pool := workers.NewPool(2)
	defer pool.Close()

	counter := progress.NewCounter()
	d := NewDispatcher(pool, &scriptedTransport{delay: 5 * time.Millisecond}, counter)

	names := []string{"ok-1", "fail-1", "ok-2", "fail-2", "ok-3"}
	results := make(map[string]outcome)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range names {
		name := name
		wg.Add(1)
		p := testPayload(t, name, nil)
		err := d.Dispatch(p, func(res RenditionResult, err error) {
			defer wg.Done()
			mu.Lock()
			results[name] = outcome{res, err}
			mu.Unlock()
		})
		if err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
	}
	wg.Wait()

	for _, name := range names {
		got := results[name]
		if strings.HasPrefix(name, "fail") {
			if got.err == nil {
				t.Errorf("%s: expected error", name)
			}
			continue
		}
		if got.err != nil {
			t.Errorf("%s: error = %v", name, got.err)
		}
		if got.res.Src != "/static/clip-"+name+".webm" {
			t.Errorf("%s: Src = %q", name, got.res.Src)
		}
	}

	display := testPayload(t, "ok-1", nil).Args.UserDisplayedName
	if !counter.Finished(display) || counter.Ticks(display) != 100 {
		t.Errorf("progress for %s: ticks=%d finished=%v", display, counter.Ticks(display), counter.Finished(display))
	}
}

func TestDispatcherBoundsConcurrency(t *testing.T) {
	pool := workers.NewPool(2)
	transport := &scriptedTransport{delay: 20 * time.Millisecond}
	d := NewDispatcher(pool, transport, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		if err := d.Dispatch(testPayload(t, "ok", nil), func(RenditionResult, error) { wg.Done() }); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
	}
	wg.Wait()
	pool.Close()

	if got := transport.peak.Load(); got > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", got)
	}
}

type panickingTransport struct{}

func (panickingTransport) Run(context.Context, Payload, TickFunc) (RenditionResult, error) {
	panic("kaboom")
}

func TestDispatcherRecoversPanics(t *testing.T) {
	pool := workers.NewPool(1)
	defer pool.Close()
	d := NewDispatcher(pool, panickingTransport{}, nil)

	done := make(chan error, 1)
	_ = d.Dispatch(testPayload(t, "x", nil), func(_ RenditionResult, err error) { done <- err })

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "kaboom") {
			t.Errorf("err = %v, want panic error", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job never settled")
	}
}

func TestDispatcherClosedPool(t *testing.T) {
	pool := workers.NewPool(1)
	pool.Close()
	d := NewDispatcher(pool, &scriptedTransport{}, nil)

	called := false
	err := d.Dispatch(testPayload(t, "x", nil), func(RenditionResult, error) { called = true })
	if !errors.Is(err, workers.ErrPoolClosed) {
		t.Errorf("Dispatch() error = %v, want ErrPoolClosed", err)
	}
	if called {
		t.Error("done should not be called when dispatch is refused")
	}
}

func TestDispatcherWithLocalTransport(t *testing.T) {
	pool := workers.NewPool(1)
	defer pool.Close()

	exec := &fakeExecutor{events: append(progressEvents(40, 100), ffmpeg.Event{Type: ffmpeg.EventEnd})}
	counter := progress.NewCounter()
	d := NewDispatcher(pool, NewLocalTransport(NewWorker(exec)), counter)

	p := testPayload(t, "720p", &probe.Info{Width: 1920, Height: 1080, Frames: 50})
	done := make(chan outcome, 1)
	_ = d.Dispatch(p, func(res RenditionResult, err error) { done <- outcome{res, err} })

	got := <-done
	if got.err != nil {
		t.Fatalf("error = %v", got.err)
	}
	if counter.Total(p.Args.UserDisplayedName) != 50 || counter.Ticks(p.Args.UserDisplayedName) != 50 {
		t.Errorf("progress total=%d ticks=%d, want 50/50",
			counter.Total(p.Args.UserDisplayedName), counter.Ticks(p.Args.UserDisplayedName))
	}
}
