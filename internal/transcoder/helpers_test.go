package transcoder

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"video-renditions/internal/ffmpeg"
	"video-renditions/internal/pipeline"
	"video-renditions/internal/probe"
)

// fakeExecutor replays a fixed event script and records the arguments
// of every run.
type fakeExecutor struct {
	mu     sync.Mutex
	events []ffmpeg.Event
	runs   [][]string
	hook   func(args []string)
}

func (f *fakeExecutor) Execute(ctx context.Context, args []string) <-chan ffmpeg.Event {
	f.mu.Lock()
	f.runs = append(f.runs, args)
	events := append([]ffmpeg.Event(nil), f.events...)
	hook := f.hook
	f.mu.Unlock()

	ch := make(chan ffmpeg.Event)
	go func() {
		defer close(ch)
		if hook != nil {
			hook(args)
		}
		for _, ev := range events {
			ch <- ev
		}
	}()
	return ch
}

func (f *fakeExecutor) Runs() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func progressEvents(percents ...float64) []ffmpeg.Event {
	out := make([]ffmpeg.Event, 0, len(percents)+1)
	for _, p := range percents {
		out = append(out, ffmpeg.Event{Type: ffmpeg.EventProgress, Percent: p})
	}
	return out
}

func testPayload(t *testing.T, name string, source *probe.Info) Payload {
	t.Helper()
	return testPayloadIn(t, "/out", name, source)
}

// testPayloadIn builds a payload whose output lands in outDir.
func testPayloadIn(t *testing.T, outDir, name string, source *probe.Info) Payload {
	t.Helper()
	target := filepath.Join(outDir, "clip-"+name+".webm")

	cmd := ffmpeg.New(nil).Input("/in/clip.mp4")
	transform := pipeline.Transform{Operations: []pipeline.Operation{
		{Op: "videoCodec", Args: []string{"libvpx-vp9"}},
		{Op: "noAudio"},
	}}
	cmd, err := transform.Apply(cmd)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	cmd.Output(target)

	desc, err := pipeline.Serialize(cmd)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	encoded, err := pipeline.Encode(desc)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	return Payload{
		InputPaths: []InputPath{{Path: "/in/clip.mp4", ContentDigest: "abc"}},
		OutputDir:  outDir,
		Args: Args{
			UserDisplayedName:  "ffmpeg [" + name + "] - clip.mp4 -> clip.webm",
			Pipeline:           name,
			SerialisedPipeline: encoded,
			MaxWidth:           640,
			MaxHeight:          360,
			AbsolutePath:       target,
			OriginalName:       "clip.mp4",
			FileExtension:      "webm",
			Src:                "/static/clip-" + name + ".webm",
		},
		Source: source,
	}
}
