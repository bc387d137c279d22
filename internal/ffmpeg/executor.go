package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
)

// EventType identifies an executor event.
type EventType int

const (
	EventProgress EventType = iota
	EventEnd
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventProgress:
		return "progress"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one item of an executor's event stream. Percent is set for
// progress events, Err for error events.
type Event struct {
	Type    EventType
	Percent float64
	Err     error
}

// Executor runs an argument list. The returned channel yields progress
// events followed by exactly one EventEnd or EventError, then closes.
// Callers must drain it.
type Executor interface {
	Execute(ctx context.Context, args []string) <-chan Event
}

// ProcessExecutor runs the ffmpeg binary as a child process and derives
// percent-complete from the stats it prints on stderr.
type ProcessExecutor struct {
	Binary string
	// Stderr, when set, receives a copy of every stderr line.
	Stderr io.Writer
}

// NewProcessExecutor returns an executor for the given binary ("ffmpeg"
// when empty).
func NewProcessExecutor(binary string) *ProcessExecutor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &ProcessExecutor{Binary: binary}
}

const stderrTailLines = 20

// Execute starts the process and streams its events.
func (e *ProcessExecutor) Execute(ctx context.Context, args []string) <-chan Event {
	events := make(chan Event, 16)
	go e.run(ctx, args, events)
	return events
}

func (e *ProcessExecutor) run(ctx context.Context, args []string, events chan<- Event) {
	defer close(events)

	full := append([]string{"-hide_banner", "-nostdin"}, args...)
	cmd := exec.CommandContext(ctx, e.Binary, full...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		events <- Event{Type: EventError, Err: &ExecutorError{Args: args, Err: err}}
		return
	}

	if err := cmd.Start(); err != nil {
		events <- Event{Type: EventError, Err: &ExecutorError{Args: args, Err: err}}
		return
	}

	tail := &stderrTail{n: stderrTailLines}
	var total float64

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanStatsLines)
	for scanner.Scan() {
		line := scanner.Text()
		tail.add(line)
		if e.Stderr != nil {
			_, _ = io.WriteString(e.Stderr, line+"\n")
		}

		if total == 0 {
			if d, ok := ParseDuration(line); ok {
				total = d
			}
			continue
		}
		if t, ok := ParseProgressTime(line); ok {
			select {
			case events <- Event{Type: EventProgress, Percent: t / total * 100}:
			case <-ctx.Done():
			}
		}
	}

	waitErr := cmd.Wait()
	if waitErr == nil {
		waitErr = scanner.Err()
	}
	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			waitErr = errors.Join(ctxErr, waitErr)
		}
		events <- Event{Type: EventError, Err: &ExecutorError{Args: args, Stderr: tail.String(), Err: waitErr}}
		return
	}
	events <- Event{Type: EventEnd}
}
