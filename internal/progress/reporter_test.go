package progress

import (
	"bytes"
	"log"
	"strings"
	"sync"
	"testing"

	"video-renditions/internal/logging"
)

func TestCounter(t *testing.T) {
	c := NewCounter()
	tr := c.Track("720p", 50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Tick(5)
		}()
	}
	wg.Wait()
	tr.Finish()

	if got := c.Ticks("720p"); got != 50 {
		t.Errorf("Ticks() = %d, want 50", got)
	}
	if got := c.Total("720p"); got != 50 {
		t.Errorf("Total() = %d, want 50", got)
	}
	if !c.Finished("720p") {
		t.Error("Finished() = false")
	}
}

func TestMulti(t *testing.T) {
	a, b := NewCounter(), NewCounter()
	tr := Multi(a, b, Nop).Track("job", 10)
	tr.Tick(3)
	tr.Finish()

	for i, c := range []*Counter{a, b} {
		if c.Ticks("job") != 3 || !c.Finished("job") {
			t.Errorf("reporter %d: ticks=%d finished=%v", i, c.Ticks("job"), c.Finished("job"))
		}
	}
}

func TestBarNonInteractive(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBarWriter(&buf)

	first := bar.Track("480p", 100)
	second := bar.Track("720p", 100)

	first.Tick(50)
	first.Tick(1)
	second.Tick(100)
	second.Tick(10)
	first.Finish()
	second.Finish()

	out := buf.String()
	for _, want := range []string{
		"Transcoding 480p   0% (0/100 frames)",
		"Transcoding 480p  25% (50/200 frames)",
		"Transcoding 720p  75% (151/200 frames)",
		"Transcoding 720p 100% (200/200 frames)",
		"Transcoding done 100% (200/200 frames)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(51/200") {
		t.Errorf("bar printed a line without crossing a 10%% step:\n%s", out)
	}
}

func TestBarFinishIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBarWriter(&buf)
	tr := bar.Track("a", 10)
	tr.Finish()
	tr.Finish()
	tr.Tick(5)

	if bar.current != 10 {
		t.Errorf("current = %d, want 10", bar.current)
	}
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)

	prev := logging.GetLevel()
	logging.SetLevel(logging.LevelDebug)
	defer logging.SetLevel(prev)

	r := NewLogReporter(logging.NewSink("progress"))
	tr := r.Track("clip", 8)
	tr.Tick(2)
	tr.Tick(4)
	tr.Finish()

	out := buf.String()
	for _, want := range []string{"clip started (8 frames)", "clip 25%", "clip 75%", "clip finished"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}
