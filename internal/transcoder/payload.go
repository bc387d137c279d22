package transcoder

import (
	"errors"
	"fmt"

	"video-renditions/internal/probe"
)

// InputPath identifies one source file.
type InputPath struct {
	Path          string `json:"path"`
	ContentDigest string `json:"contentDigest"`
}

// Args are the per-rendition parameters.
type Args struct {
	UserDisplayedName  string `json:"userDisplayedName"`
	Pipeline           string `json:"pipeline"`
	SerialisedPipeline string `json:"serialisedPipeline"`
	MaxHeight          int    `json:"maxHeight"`
	MaxWidth           int    `json:"maxWidth"`

	AbsolutePath  string `json:"absolutePath"`
	OriginalName  string `json:"originalName"`
	FileExtension string `json:"fileExtension"`
	Src           string `json:"src"`
}

// Payload is everything a worker needs to produce one rendition. Source
// is nil when the source could not be probed.
type Payload struct {
	InputPaths []InputPath `json:"inputPaths"`
	OutputDir  string      `json:"outputDir"`
	Args       Args        `json:"args"`
	Source     *probe.Info `json:"source,omitempty"`
}

// Validate checks the fields a worker cannot do without.
func (p *Payload) Validate() error {
	if len(p.InputPaths) == 0 {
		return errors.New("payload has no input paths")
	}
	if p.Args.SerialisedPipeline == "" {
		return errors.New("payload has no serialised pipeline")
	}
	if p.Args.MaxWidth <= 0 || p.Args.MaxHeight <= 0 {
		return fmt.Errorf("payload bounds %dx%d are not positive", p.Args.MaxWidth, p.Args.MaxHeight)
	}
	return nil
}

// RenditionResult describes a finished rendition.
type RenditionResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspectRatio"`

	AbsolutePath  string `json:"absolutePath"`
	OriginalName  string `json:"originalName"`
	FileExtension string `json:"fileExtension"`
	Src           string `json:"src"`
}

// Message is one line of the worker process protocol. Exactly one of
// the tick pair, Result or Error is set.
type Message struct {
	Tick   int              `json:"tick,omitempty"`
	Total  int              `json:"total,omitempty"`
	Result *RenditionResult `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// RemoteError is a failure reported by a worker process.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "worker: " + e.Message
}

// TickFunc receives frame tick deltas for one job.
type TickFunc func(delta, total int)
