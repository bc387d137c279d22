package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"video-renditions/internal/geometry"
)

// Info is the geometry of a source's first video stream.
type Info struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Frames   int     `json:"frames"`
	Duration float64 `json:"duration"`
}

// Dimensions returns the frame size.
func (i Info) Dimensions() geometry.Dimensions {
	return geometry.Dimensions{Width: i.Width, Height: i.Height}
}

// ProbeFailureError reports that a source could not be probed.
type ProbeFailureError struct {
	Path string
	Err  error
}

func (e *ProbeFailureError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeFailureError) Unwrap() error {
	return e.Err
}

// ErrNoVideoStream is wrapped by ProbeFailureError for audio-only inputs.
var ErrNoVideoStream = errors.New("file has no video streams")

// Prober reads source geometry.
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// FFprobe runs the ffprobe binary.
type FFprobe struct {
	Binary string
}

// NewFFprobe returns a prober for the given binary ("ffprobe" when empty).
func NewFFprobe(binary string) *FFprobe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobe{Binary: binary}
}

// Probe runs a single ffprobe JSON call against path.
func (p *FFprobe) Probe(ctx context.Context, path string) (Info, error) {
	cmd := exec.CommandContext(ctx, p.Binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w - %s", err, msg)
		}
		return Info{}, &ProbeFailureError{Path: path, Err: err}
	}

	info, err := ParseJSON(stdout.Bytes())
	if err != nil {
		return Info{}, &ProbeFailureError{Path: path, Err: err}
	}
	return info, nil
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	NbFrames    string         `json:"nb_frames"`
	Duration    string         `json:"duration"`
	Disposition map[string]int `json:"disposition"`
}

// ParseJSON extracts Info from raw ffprobe JSON. The first video stream
// that is not an attached picture wins.
func ParseJSON(data []byte) (Info, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	for _, s := range raw.Streams {
		if s.CodecType != "video" || s.Disposition["attached_pic"] == 1 {
			continue
		}
		info := Info{
			Width:  s.Width,
			Height: s.Height,
		}
		info.Frames, _ = strconv.Atoi(s.NbFrames)
		info.Duration, _ = strconv.ParseFloat(s.Duration, 64)
		if info.Duration == 0 {
			info.Duration, _ = strconv.ParseFloat(raw.Format.Duration, 64)
		}
		return info, nil
	}
	return Info{}, ErrNoVideoStream
}
