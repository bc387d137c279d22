package ffmpeg

import (
	"fmt"
	"strings"
)

// ExecutorError reports a failed ffmpeg run. Stderr holds the tail of the
// process's diagnostic output.
type ExecutorError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ExecutorError) Error() string {
	msg := fmt.Sprintf("ffmpeg failed: %v", e.Err)
	if tail := strings.TrimSpace(e.Stderr); tail != "" {
		msg += " - " + lastLine(tail)
	}
	return msg
}

func (e *ExecutorError) Unwrap() error {
	return e.Err
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
