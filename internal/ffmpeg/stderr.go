package ffmpeg

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

var (
	reDuration = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
	reTime     = regexp.MustCompile(`time=\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
)

// ParseDuration extracts the input duration in seconds from an ffmpeg
// banner line such as "  Duration: 00:01:02.50, start: 0.000000".
func ParseDuration(line string) (float64, bool) {
	return parseTimestamp(reDuration, line)
}

// ParseProgressTime extracts the encoded position in seconds from a stats
// line such as "frame=  240 fps=60 ... time=00:00:10.00 bitrate=...".
func ParseProgressTime(line string) (float64, bool) {
	return parseTimestamp(reTime, line)
}

func parseTimestamp(re *regexp.Regexp, line string) (float64, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	secs, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(h*3600+mins*60) + secs, true
}

// scanStatsLines splits on both '\n' and '\r'; ffmpeg rewrites its stats
// line in place with carriage returns.
func scanStatsLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// stderrTail keeps the last n non-empty lines of output.
type stderrTail struct {
	n     int
	lines []string
}

func (t *stderrTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.n {
		t.lines = t.lines[len(t.lines)-t.n:]
	}
}

func (t *stderrTail) String() string {
	return strings.Join(t.lines, "\n")
}
