package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// writeFakeBinary writes a shell script standing in for ffmpeg.
func writeFakeBinary(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake binary requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("failed to write fake binary: %v", err)
	}
	return path
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("timed out waiting for executor events")
		}
	}
}

func TestProcessExecutorProgressAndEnd(t *testing.T) {
	bin := writeFakeBinary(t, `
echo "  Duration: 00:00:10.00, start: 0.000000" >&2
echo "frame=1 time=00:00:02.50 bitrate=1k" >&2
echo "frame=2 time=00:00:05.00 bitrate=1k" >&2
exit 0
`)

	events := collect(t, NewProcessExecutor(bin).Execute(context.Background(), []string{"-i", "in.mp4", "out.mp4"}))

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if events[0].Type != EventProgress || events[0].Percent != 25 {
		t.Errorf("first event = %+v, want progress 25", events[0])
	}
	if events[1].Type != EventProgress || events[1].Percent != 50 {
		t.Errorf("second event = %+v, want progress 50", events[1])
	}
	if events[2].Type != EventEnd {
		t.Errorf("last event = %v, want end", events[2].Type)
	}
}

func TestProcessExecutorError(t *testing.T) {
	bin := writeFakeBinary(t, `
echo "in.mp4: No such file or directory" >&2
exit 1
`)

	events := collect(t, NewProcessExecutor(bin).Execute(context.Background(), []string{"-i", "in.mp4", "out.mp4"}))

	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected a single error event, got %+v", events)
	}

	var execErr *ExecutorError
	if !errors.As(events[0].Err, &execErr) {
		t.Fatalf("expected *ExecutorError, got %T", events[0].Err)
	}
	if execErr.Stderr != "in.mp4: No such file or directory" {
		t.Errorf("unexpected stderr tail %q", execErr.Stderr)
	}
	if len(execErr.Args) != 3 {
		t.Errorf("expected original args on the error, got %q", execErr.Args)
	}
}

func TestProcessExecutorMissingBinary(t *testing.T) {
	events := collect(t, NewProcessExecutor(filepath.Join(t.TempDir(), "nope")).Execute(context.Background(), nil))

	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected a single error event, got %+v", events)
	}
}

func TestEventTypeString(t *testing.T) {
	for typ, want := range map[EventType]string{
		EventProgress: "progress",
		EventEnd:      "end",
		EventError:    "error",
		EventType(9):  "unknown",
	} {
		if got := typ.String(); got != want {
			t.Errorf("EventType(%d).String() = %q, want %q", typ, got, want)
		}
	}
}
