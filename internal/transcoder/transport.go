package transcoder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"video-renditions/internal/logging"
)

// Transport carries a payload to a worker and its outcome back.
type Transport interface {
	Run(ctx context.Context, p Payload, onTick TickFunc) (RenditionResult, error)
}

// LocalTransport runs the worker in-process. The payload and result are
// still round-tripped through JSON so nothing unserializable can leak
// across.
type LocalTransport struct {
	worker *Worker
}

// NewLocalTransport returns a transport for worker.
func NewLocalTransport(worker *Worker) *LocalTransport {
	return &LocalTransport{worker: worker}
}

// Run implements Transport.
func (t *LocalTransport) Run(ctx context.Context, p Payload, onTick TickFunc) (RenditionResult, error) {
	var sent Payload
	if err := roundTrip(p, &sent); err != nil {
		return RenditionResult{}, fmt.Errorf("encode payload: %w", err)
	}

	res, err := t.worker.Process(ctx, sent, onTick)
	if err != nil {
		return RenditionResult{}, err
	}

	var received RenditionResult
	if err := roundTrip(res, &received); err != nil {
		return RenditionResult{}, fmt.Errorf("decode result: %w", err)
	}
	return received, nil
}

func roundTrip(in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// ExecTransport spawns one worker process per payload. The payload is
// written to the process's stdin; the process answers with Message lines
// on stdout.
type ExecTransport struct {
	Binary string
	Args   []string
}

// NewExecTransport returns a transport that runs binary with args.
func NewExecTransport(binary string, args ...string) *ExecTransport {
	return &ExecTransport{Binary: binary, Args: args}
}

const maxMessageSize = 1 << 20

// Run implements Transport.
func (t *ExecTransport) Run(ctx context.Context, p Payload, onTick TickFunc) (RenditionResult, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return RenditionResult{}, fmt.Errorf("encode payload: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.Binary, t.Args...)
	cmd.Stdin = bytes.NewReader(data)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return RenditionResult{}, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return RenditionResult{}, fmt.Errorf("failed to start worker: %w", err)
	}

	result, remoteErr := readMessages(stdout, onTick)
	waitErr := cmd.Wait()

	switch {
	case remoteErr != nil:
		return RenditionResult{}, remoteErr
	case result != nil:
		if waitErr != nil {
			logging.Warn("worker reported a result but exited with %v", waitErr)
		}
		return *result, nil
	case waitErr != nil:
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return RenditionResult{}, fmt.Errorf("worker process: %w - %s", waitErr, msg)
		}
		return RenditionResult{}, fmt.Errorf("worker process: %w", waitErr)
	default:
		return RenditionResult{}, errors.New("worker process exited without a result")
	}
}

// readMessages consumes the protocol stream. Malformed lines are logged
// and skipped.
func readMessages(r io.Reader, onTick TickFunc) (*RenditionResult, error) {
	var result *RenditionResult
	var remoteErr error

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var m Message
		if err := json.Unmarshal(line, &m); err != nil {
			logging.Warn("ignoring malformed worker message %q: %v", line, err)
			continue
		}
		switch {
		case m.Error != "":
			remoteErr = &RemoteError{Message: m.Error}
		case m.Result != nil:
			result = m.Result
		case m.Tick > 0 && onTick != nil:
			onTick(m.Tick, m.Total)
		}
	}
	if err := scanner.Err(); err != nil && remoteErr == nil && result == nil {
		remoteErr = fmt.Errorf("read worker output: %w", err)
	}
	return result, remoteErr
}

// Serve reads one payload from r, processes it on worker and writes the
// protocol stream to w. It is the body of the transcode-worker binary.
func Serve(ctx context.Context, r io.Reader, w io.Writer, worker *Worker) error {
	enc := json.NewEncoder(w)

	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		err = fmt.Errorf("decode payload: %w", err)
		_ = enc.Encode(Message{Error: err.Error()})
		return err
	}

	res, err := worker.Process(ctx, p, func(delta, total int) {
		if encErr := enc.Encode(Message{Tick: delta, Total: total}); encErr != nil {
			logging.Warn("failed to write tick: %v", encErr)
		}
	})
	if err != nil {
		_ = enc.Encode(Message{Error: err.Error()})
		return err
	}
	return enc.Encode(Message{Result: &res})
}
