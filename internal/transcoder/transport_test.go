package transcoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"video-renditions/internal/ffmpeg"
	"video-renditions/internal/probe"
)

func TestLocalTransport(t *testing.T) {
	exec := &fakeExecutor{events: append(progressEvents(100), ffmpeg.Event{Type: ffmpeg.EventEnd})}
	tr := NewLocalTransport(NewWorker(exec))

	sum := 0
	res, err := tr.Run(context.Background(), testPayload(t, "a", &probe.Info{Width: 360, Height: 640, Frames: 30}), func(d, _ int) { sum += d })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Width != 640 || res.Height != 1138 {
		t.Errorf("size = %dx%d, want 640x1138", res.Width, res.Height)
	}
	if sum != 30 {
		t.Errorf("ticks = %d, want 30", sum)
	}
}

func TestServe(t *testing.T) {
	exec := &fakeExecutor{events: append(progressEvents(25, 100), ffmpeg.Event{Type: ffmpeg.EventEnd})}
	payload, err := json.Marshal(testPayload(t, "a", &probe.Info{Width: 1280, Height: 720, Frames: 8}))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := Serve(context.Background(), bytes.NewReader(payload), &out, NewWorker(exec)); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{
		`{"tick":2,"total":8}`,
		`{"tick":6,"total":8}`,
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out.String())
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %s, want %s", i, lines[i], w)
		}
	}

	var last Message
	if err := json.Unmarshal([]byte(lines[2]), &last); err != nil {
		t.Fatal(err)
	}
	if last.Result == nil || last.Result.Width != 640 {
		t.Errorf("result line = %s", lines[2])
	}
}

func TestServeBadPayload(t *testing.T) {
	var out bytes.Buffer
	err := Serve(context.Background(), strings.NewReader("not json"), &out, NewWorker(&fakeExecutor{}))
	if err == nil {
		t.Fatal("Serve() expected error")
	}
	if !strings.Contains(out.String(), `"error":"decode payload`) {
		t.Errorf("output = %s, want an error message", out.String())
	}
}

func TestReadMessages(t *testing.T) {
	stream := strings.Join([]string{
		`{"tick":3,"total":10}`,
		`garbage`,
		``,
		`{"tick":7,"total":10}`,
		`{"result":{"width":4,"height":2,"aspectRatio":2,"src":"/static/x.mp4"}}`,
	}, "\n")

	sum := 0
	res, err := readMessages(strings.NewReader(stream), func(d, _ int) { sum += d })
	if err != nil {
		t.Fatalf("readMessages() error = %v", err)
	}
	if res == nil || res.Src != "/static/x.mp4" {
		t.Fatalf("result = %+v", res)
	}
	if sum != 10 {
		t.Errorf("ticks = %d, want 10", sum)
	}

	_, err = readMessages(strings.NewReader(`{"error":"no video"}`), nil)
	var re *RemoteError
	if !errors.As(err, &re) || re.Message != "no video" {
		t.Errorf("readMessages() error = %v, want RemoteError", err)
	}
}

// writeFakeWorker writes a shell script standing in for transcode-worker.
func writeFakeWorker(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake binary requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "transcode-worker")
	if err := os.WriteFile(path, []byte("#!/bin/sh\ncat > /dev/null\n"+body), 0o755); err != nil {
		t.Fatalf("failed to write fake worker: %v", err)
	}
	return path
}

func TestExecTransport(t *testing.T) {
	bin := writeFakeWorker(t, `echo '{"tick":5,"total":10}'
echo '{"result":{"width":640,"height":360,"aspectRatio":1.7777777777777777,"src":"/static/a.webm"}}'
`)
	tr := NewExecTransport(bin)

	sum := 0
	res, err := tr.Run(context.Background(), testPayload(t, "a", nil), func(d, _ int) { sum += d })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Width != 640 || res.Src != "/static/a.webm" {
		t.Errorf("result = %+v", res)
	}
	if sum != 5 {
		t.Errorf("ticks = %d, want 5", sum)
	}
}

func TestExecTransportErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "remote error", body: "echo '{\"error\":\"boom\"}'\nexit 1\n", want: "worker: boom"},
		{name: "crash", body: "echo 'fatal' >&2\nexit 3\n", want: "fatal"},
		{name: "silent exit", body: "exit 0\n", want: "without a result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewExecTransport(writeFakeWorker(t, tt.body))
			_, err := tr.Run(context.Background(), testPayload(t, "a", nil), nil)
			if err == nil {
				t.Fatal("Run() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Run() error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestExecTransportMissingBinary(t *testing.T) {
	tr := NewExecTransport("/nonexistent/transcode-worker")
	if _, err := tr.Run(context.Background(), testPayload(t, "a", nil), nil); err == nil {
		t.Error("Run() expected error for missing binary")
	}
}
