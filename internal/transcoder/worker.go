package transcoder

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"video-renditions/internal/ffmpeg"
	"video-renditions/internal/geometry"
	"video-renditions/internal/logging"
	"video-renditions/internal/pipeline"
	"video-renditions/internal/progress"
)

// Worker executes payloads.
type Worker struct {
	executor    ffmpeg.Executor
	debugFFmpeg bool
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithDebugFFmpeg logs the full argument list of every run.
func WithDebugFFmpeg(enabled bool) WorkerOption {
	return func(w *Worker) { w.debugFFmpeg = enabled }
}

// NewWorker returns a Worker running commands through executor.
func NewWorker(executor ffmpeg.Executor, opts ...WorkerOption) *Worker {
	w := &Worker{executor: executor}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process rebuilds the command in p, sizes it, runs it and returns the
// rendition's metadata. onTick may be nil.
func (w *Worker) Process(ctx context.Context, p Payload, onTick TickFunc) (RenditionResult, error) {
	if err := p.Validate(); err != nil {
		return RenditionResult{}, err
	}
	args := p.Args

	desc, err := pipeline.Decode(args.SerialisedPipeline)
	if err != nil {
		return RenditionResult{}, err
	}

	sink := logging.NewSink("ffmpeg " + args.Pipeline)
	cmd, err := pipeline.Deserialize(desc, sink)
	if err != nil {
		return RenditionResult{}, err
	}

	var src geometry.Dimensions
	frames := 0
	if p.Source != nil {
		src = p.Source.Dimensions()
		frames = p.Source.Frames
	}
	bounds := geometry.Bounds{MaxWidth: args.MaxWidth, MaxHeight: args.MaxHeight}
	size := geometry.Resolve(src, bounds)
	if size.Fallback {
		logging.Warn("Could not read stream resolution of %s, rendering at %dx%d",
			p.InputPaths[0].Path, size.Width, size.Height)
	}

	cmd.Size(ffmpeg.FormatSize(size.Width, size.Height))
	if err := cmd.Err(); err != nil {
		return RenditionResult{}, err
	}

	ffmpegArgs := cmd.Arguments()
	if w.debugFFmpeg {
		logging.Info("ffmpeg is being executed with args: %s", strings.Join(ffmpegArgs, " "))
	}

	ticker := progress.NewTicker(frames)
	if err := w.run(ctx, ffmpegArgs, ticker, onTick); err != nil {
		logging.Warn("During error, ran ffmpeg with arguments: %s", strings.Join(ffmpegArgs, " "))
		discardPartial(args.AbsolutePath)
		return RenditionResult{}, err
	}

	return RenditionResult{
		Width:         size.Width,
		Height:        size.Height,
		AspectRatio:   size.AspectRatio,
		AbsolutePath:  args.AbsolutePath,
		OriginalName:  args.OriginalName,
		FileExtension: args.FileExtension,
		Src:           args.Src,
	}, nil
}

var errNoTerminalEvent = errors.New("executor closed its event stream without end or error")

// run consumes the whole event stream and returns the outcome of the
// terminal event.
func (w *Worker) run(ctx context.Context, args []string, ticker *progress.Ticker, onTick TickFunc) error {
	result := errNoTerminalEvent
	settled := false

	for ev := range w.executor.Execute(ctx, args) {
		if settled {
			continue
		}
		switch ev.Type {
		case ffmpeg.EventProgress:
			if delta := ticker.Advance(ev.Percent); delta > 0 && onTick != nil {
				onTick(delta, ticker.Total())
			}
		case ffmpeg.EventEnd:
			result, settled = nil, true
			if delta := ticker.Remaining(); delta > 0 && onTick != nil {
				onTick(delta, ticker.Total())
			}
		case ffmpeg.EventError:
			result, settled = ev.Err, true
			if result == nil {
				result = errors.New("ffmpeg failed")
			}
		}
	}
	return result
}

// discardPartial removes whatever a failed run left at the output path.
// An existing output counts as a finished rendition.
func discardPartial(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Error("Failed to remove partial output %s: %v", path, err)
	}
}
