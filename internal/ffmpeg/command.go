package ffmpeg

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Logger receives diagnostics from a command. logging.Sink implements it.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Input is one "-i" source with the options that precede it.
type Input struct {
	Source  string
	Options []string
}

// Output is one output file and everything that applies to it.
type Output struct {
	Target       string
	Flags        map[string]string
	Audio        []string
	AudioFilters []string
	Video        []string
	VideoFilters []string
	SizeFilters  []string
	Options      []string
	SizeData     map[string]string
}

func newOutput() *Output {
	return &Output{
		Flags:    map[string]string{},
		SizeData: map[string]string{},
	}
}

// HasTarget reports whether the output has a destination.
func (o *Output) HasTarget() bool {
	return o.Target != ""
}

// Command is a configured, not yet executed, ffmpeg invocation.
//
// Like the fluent builders it mirrors, a Command always has a current
// output. Output options called before the first Output(target) apply to
// an untargeted output, which Output then claims.
type Command struct {
	inputs         []*Input
	global         []string
	complexFilters []string
	outputs        []*Output
	logger         Logger
	err            error
}

// New returns an empty command. A nil logger discards diagnostics.
func New(logger Logger) *Command {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Command{
		outputs: []*Output{newOutput()},
		logger:  logger,
	}
}

// Logger returns the sink bound to the command.
func (c *Command) Logger() Logger {
	return c.logger
}

// Err returns the first builder error, if any.
func (c *Command) Err() error {
	return c.err
}

func (c *Command) fail(format string, args ...interface{}) *Command {
	err := fmt.Errorf(format, args...)
	c.logger.Warn("%v", err)
	if c.err == nil {
		c.err = err
	}
	return c
}

func (c *Command) current() *Output {
	return c.outputs[len(c.outputs)-1]
}

// Inputs returns the configured inputs.
func (c *Command) Inputs() []*Input {
	return c.inputs
}

// Outputs returns the configured outputs, including an untargeted one.
func (c *Command) Outputs() []*Output {
	return c.outputs
}

// GlobalOptionList returns a copy of the global option list.
func (c *Command) GlobalOptionList() []string {
	return slices.Clone(c.global)
}

// ComplexFilters returns a copy of the complex filter graph entries.
func (c *Command) ComplexFilters() []string {
	return slices.Clone(c.complexFilters)
}

// Input adds a source.
func (c *Command) Input(source string) *Command {
	c.inputs = append(c.inputs, &Input{Source: source})
	return c
}

// InputOptions appends options to the most recently added input.
func (c *Command) InputOptions(opts ...string) *Command {
	if len(c.inputs) == 0 {
		return c.fail("input options %v given before any input", opts)
	}
	in := c.inputs[len(c.inputs)-1]
	in.Options = append(in.Options, opts...)
	return c
}

// Output sets the target of the current output, or starts a new output
// when the current one is already targeted.
func (c *Command) Output(target string) *Command {
	if target == "" {
		return c.fail("empty output target")
	}
	if c.current().HasTarget() {
		c.outputs = append(c.outputs, newOutput())
	}
	c.current().Target = target
	return c
}

// GlobalOptions appends options placed after all inputs.
func (c *Command) GlobalOptions(opts ...string) *Command {
	c.global = append(c.global, opts...)
	return c
}

// ComplexFilter appends a filter graph entry; entries are joined with ';'.
func (c *Command) ComplexFilter(graph string) *Command {
	c.complexFilters = append(c.complexFilters, graph)
	return c
}

// Flag records an output flag emitted as "-key value".
func (c *Command) Flag(key, value string) *Command {
	c.current().Flags[key] = value
	return c
}

// AudioCodec sets "-acodec".
func (c *Command) AudioCodec(codec string) *Command {
	c.current().Audio = append(c.current().Audio, "-acodec", codec)
	return c
}

// AudioBitrate sets "-b:a".
func (c *Command) AudioBitrate(bitrate string) *Command {
	c.current().Audio = append(c.current().Audio, "-b:a", bitrate)
	return c
}

// AudioChannels sets "-ac".
func (c *Command) AudioChannels(n int) *Command {
	c.current().Audio = append(c.current().Audio, "-ac", strconv.Itoa(n))
	return c
}

// AudioFrequency sets "-ar".
func (c *Command) AudioFrequency(hz int) *Command {
	c.current().Audio = append(c.current().Audio, "-ar", strconv.Itoa(hz))
	return c
}

// NoAudio drops audio streams.
func (c *Command) NoAudio() *Command {
	c.current().Audio = append(c.current().Audio, "-an")
	return c
}

// AudioFilters appends to the audio filter chain.
func (c *Command) AudioFilters(filters ...string) *Command {
	c.current().AudioFilters = append(c.current().AudioFilters, filters...)
	return c
}

// VideoCodec sets "-vcodec".
func (c *Command) VideoCodec(codec string) *Command {
	c.current().Video = append(c.current().Video, "-vcodec", codec)
	return c
}

// VideoBitrate sets "-b:v".
func (c *Command) VideoBitrate(bitrate string) *Command {
	c.current().Video = append(c.current().Video, "-b:v", bitrate)
	return c
}

// FPS sets the output frame rate.
func (c *Command) FPS(fps string) *Command {
	c.current().Video = append(c.current().Video, "-r", fps)
	return c
}

// NoVideo drops video streams.
func (c *Command) NoVideo() *Command {
	c.current().Video = append(c.current().Video, "-vn")
	return c
}

// VideoFilters appends to the video filter chain. Size filters are always
// applied after these.
func (c *Command) VideoFilters(filters ...string) *Command {
	c.current().VideoFilters = append(c.current().VideoFilters, filters...)
	return c
}

// Format sets the output container with "-f".
func (c *Command) Format(format string) *Command {
	c.current().Options = append(c.current().Options, "-f", format)
	return c
}

// OutputOptions appends raw output options.
func (c *Command) OutputOptions(opts ...string) *Command {
	c.current().Options = append(c.current().Options, opts...)
	return c
}

// Size sets the output frame size and regenerates the size filters.
// Accepted forms: "WxH", "Wx?", "?xH" and "N%".
func (c *Command) Size(size string) *Command {
	filters, err := sizeFilters(size)
	if err != nil {
		return c.fail("%v", err)
	}
	out := c.current()
	out.SizeData["size"] = size
	out.SizeFilters = filters
	return c
}

// SetFlags replaces the flags of the current output wholesale. It exists
// for deserialization; there is no fluent equivalent.
func (c *Command) SetFlags(flags map[string]string) *Command {
	c.current().Flags = maps.Clone(flags)
	if c.current().Flags == nil {
		c.current().Flags = map[string]string{}
	}
	return c
}

// SetSizeData replaces the size bookkeeping of the current output without
// regenerating its size filters.
func (c *Command) SetSizeData(sizeData map[string]string) *Command {
	c.current().SizeData = maps.Clone(sizeData)
	if c.current().SizeData == nil {
		c.current().SizeData = map[string]string{}
	}
	return c
}

// SetAudio appends raw audio arguments to the current output.
func (c *Command) SetAudio(args ...string) *Command {
	c.current().Audio = append(c.current().Audio, args...)
	return c
}

// SetVideo appends raw video arguments to the current output.
func (c *Command) SetVideo(args ...string) *Command {
	c.current().Video = append(c.current().Video, args...)
	return c
}

// SetSizeFilters appends precomputed size filters to the current output.
func (c *Command) SetSizeFilters(filters ...string) *Command {
	c.current().SizeFilters = append(c.current().SizeFilters, filters...)
	return c
}
