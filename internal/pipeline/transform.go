package pipeline

import (
	"fmt"
	"strconv"

	"video-renditions/internal/ffmpeg"
)

// Operation is one builder call in a declarative transform.
type Operation struct {
	Op   string   `json:"op" yaml:"op" validate:"required,ffop"`
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// Transform configures an ffmpeg command for one rendition. Operations are
// applied in order, then Func if set. Func cannot be hashed, so a Transform
// using it must carry an explicit Identity that changes whenever Func does.
type Transform struct {
	Identity   string                                    `json:"identity,omitempty" yaml:"identity,omitempty"`
	Operations []Operation                               `json:"operations,omitempty" yaml:"operations,omitempty" validate:"dive"`
	Func       func(cmd *ffmpeg.Command) *ffmpeg.Command `json:"-" yaml:"-"`
}

type opFunc func(c *ffmpeg.Command, args []string) error

// operations maps operation names to builder calls.
var operations = map[string]opFunc{
	"videoCodec":     one((*ffmpeg.Command).VideoCodec),
	"videoBitrate":   one((*ffmpeg.Command).VideoBitrate),
	"fps":            one((*ffmpeg.Command).FPS),
	"audioCodec":     one((*ffmpeg.Command).AudioCodec),
	"audioBitrate":   one((*ffmpeg.Command).AudioBitrate),
	"format":         one((*ffmpeg.Command).Format),
	"complexFilter":  one((*ffmpeg.Command).ComplexFilter),
	"size":           one((*ffmpeg.Command).Size),
	"audioChannels":  oneInt((*ffmpeg.Command).AudioChannels),
	"audioFrequency": oneInt((*ffmpeg.Command).AudioFrequency),
	"noAudio":        none((*ffmpeg.Command).NoAudio),
	"noVideo":        none((*ffmpeg.Command).NoVideo),
	"videoFilters":   many((*ffmpeg.Command).VideoFilters),
	"audioFilters":   many((*ffmpeg.Command).AudioFilters),
	"outputOptions":  many((*ffmpeg.Command).OutputOptions),
	"inputOptions":   many((*ffmpeg.Command).InputOptions),
	"globalOptions":  many((*ffmpeg.Command).GlobalOptions),
	"flag": func(c *ffmpeg.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("expects 2 arguments, got %d", len(args))
		}
		c.Flag(args[0], args[1])
		return nil
	},
}

func one(f func(*ffmpeg.Command, string) *ffmpeg.Command) opFunc {
	return func(c *ffmpeg.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expects 1 argument, got %d", len(args))
		}
		f(c, args[0])
		return nil
	}
}

func oneInt(f func(*ffmpeg.Command, int) *ffmpeg.Command) opFunc {
	return func(c *ffmpeg.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expects 1 argument, got %d", len(args))
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("expects an integer: %w", err)
		}
		f(c, n)
		return nil
	}
}

func none(f func(*ffmpeg.Command) *ffmpeg.Command) opFunc {
	return func(c *ffmpeg.Command, args []string) error {
		if len(args) != 0 {
			return fmt.Errorf("expects no arguments, got %d", len(args))
		}
		f(c)
		return nil
	}
}

func many(f func(*ffmpeg.Command, ...string) *ffmpeg.Command) opFunc {
	return func(c *ffmpeg.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("expects at least 1 argument")
		}
		f(c, args...)
		return nil
	}
}

// KnownOperation reports whether name is a supported operation.
func KnownOperation(name string) bool {
	_, ok := operations[name]
	return ok
}

// Apply runs the transform against cmd and returns the configured command.
func (t Transform) Apply(cmd *ffmpeg.Command) (*ffmpeg.Command, error) {
	for i, op := range t.Operations {
		fn, ok := operations[op.Op]
		if !ok {
			return nil, fmt.Errorf("operation %d: unknown operation %q", i, op.Op)
		}
		if err := fn(cmd, op.Args); err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Op, err)
		}
	}
	if t.Func != nil {
		cmd = t.Func(cmd)
		if cmd == nil {
			return nil, fmt.Errorf("transform function returned no command")
		}
	}
	if err := cmd.Err(); err != nil {
		return nil, err
	}
	return cmd, nil
}
