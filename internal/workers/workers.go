package workers

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

// EnvOverride is the environment variable that pins the worker count.
const EnvOverride = "TRANSCODE_WORKERS"

// ForCPU returns the number of concurrent ffmpeg processes to run: the
// value of TRANSCODE_WORKERS when it is a positive integer, otherwise one
// per usable CPU. A positive limit caps either.
func ForCPU(limit int) int {
	n, ok := envWorkers()
	if !ok {
		// GOMAXPROCS follows the container CPU limit in Go 1.19+.
		n = runtime.GOMAXPROCS(0)
	}
	return capAt(n, limit)
}

// Resolve returns configured when positive, otherwise ForCPU(0).
func Resolve(configured int) int {
	if configured > 0 {
		return configured
	}
	return ForCPU(0)
}

func envWorkers() (int, bool) {
	v := strings.TrimSpace(os.Getenv(EnvOverride))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func capAt(n, limit int) int {
	if n < 1 {
		n = 1
	}
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
