package pipeline

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"video-renditions/internal/ffmpeg"
)

// InputDescriptor is one input source and its options.
type InputDescriptor struct {
	Source  string   `json:"source"`
	Options []string `json:"options"`
}

// OutputDescriptor is the single output of a Descriptor.
type OutputDescriptor struct {
	Flags        map[string]string `json:"flags"`
	Audio        []string          `json:"audio"`
	AudioFilters []string          `json:"audioFilters"`
	Video        []string          `json:"video"`
	VideoFilters []string          `json:"videoFilters"`
	SizeFilters  []string          `json:"sizeFilters"`
	Options      []string          `json:"options"`
	SizeData     map[string]string `json:"sizeData"`
	Target       string            `json:"target"`
}

// Descriptor is the transportable form of a configured command. Loggers
// and callbacks are never part of it.
type Descriptor struct {
	Inputs         []InputDescriptor `json:"inputs"`
	Output         OutputDescriptor  `json:"output"`
	Global         []string          `json:"global"`
	ComplexFilters []string          `json:"complexFilters"`
}

// Validate enforces the single targeted output invariant.
func (d *Descriptor) Validate() error {
	if d.Output.Target == "" {
		return &UnsupportedPipelineError{Reason: "descriptor output has no target"}
	}
	return nil
}

// Serialize extracts the state needed to rebuild cmd. Commands with a
// builder error, no targeted output or more than one output are rejected.
func Serialize(cmd *ffmpeg.Command) (*Descriptor, error) {
	if err := cmd.Err(); err != nil {
		return nil, &UnsupportedPipelineError{Reason: err.Error()}
	}

	outputs := cmd.Outputs()
	if len(outputs) != 1 {
		return nil, &UnsupportedPipelineError{Reason: fmt.Sprintf("expected exactly one output, got %d", len(outputs))}
	}
	out := outputs[0]
	if !out.HasTarget() {
		return nil, &UnsupportedPipelineError{Reason: "only complete pipelines with an output target can be serialized"}
	}

	d := &Descriptor{
		Inputs: make([]InputDescriptor, 0, len(cmd.Inputs())),
		Output: OutputDescriptor{
			Flags:        cloneMap(out.Flags),
			Audio:        cloneList(out.Audio),
			AudioFilters: cloneList(out.AudioFilters),
			Video:        cloneList(out.Video),
			VideoFilters: cloneList(out.VideoFilters),
			SizeFilters:  cloneList(out.SizeFilters),
			Options:      cloneList(out.Options),
			SizeData:     cloneMap(out.SizeData),
			Target:       out.Target,
		},
		Global:         cloneList(cmd.GlobalOptionList()),
		ComplexFilters: cloneList(cmd.ComplexFilters()),
	}
	for _, in := range cmd.Inputs() {
		d.Inputs = append(d.Inputs, InputDescriptor{Source: in.Source, Options: cloneList(in.Options)})
	}
	return d, nil
}

// Deserialize rebuilds a command from d, bound to logger.
//
// The rebuild order is fixed: inputs with their options, the output
// target, then flags, audio, audio filters, video, video filters, size
// filters, size data and options. Global options and complex filters are
// restored last.
func Deserialize(d *Descriptor, logger ffmpeg.Logger) (*ffmpeg.Command, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	cmd := ffmpeg.New(logger)

	for _, in := range d.Inputs {
		cmd.Input(in.Source)
		if len(in.Options) > 0 {
			cmd.InputOptions(in.Options...)
		}
	}

	cmd.Output(d.Output.Target)

	out := d.Output
	if len(out.Flags) > 0 {
		cmd.SetFlags(out.Flags)
	}
	if len(out.Audio) > 0 {
		cmd.SetAudio(out.Audio...)
	}
	if len(out.AudioFilters) > 0 {
		cmd.AudioFilters(out.AudioFilters...)
	}
	if len(out.Video) > 0 {
		cmd.SetVideo(out.Video...)
	}
	if len(out.VideoFilters) > 0 {
		cmd.VideoFilters(out.VideoFilters...)
	}
	if len(out.SizeFilters) > 0 {
		cmd.SetSizeFilters(out.SizeFilters...)
	}
	if len(out.SizeData) > 0 {
		cmd.SetSizeData(out.SizeData)
	}
	if len(out.Options) > 0 {
		cmd.OutputOptions(out.Options...)
	}

	if len(d.Global) > 0 {
		cmd.GlobalOptions(d.Global...)
	}
	for _, f := range d.ComplexFilters {
		cmd.ComplexFilter(f)
	}

	if err := cmd.Err(); err != nil {
		return nil, &UnsupportedPipelineError{Reason: err.Error()}
	}
	return cmd, nil
}

// Encode renders d as JSON.
func Encode(d *Descriptor) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode descriptor: %w", err)
	}
	return string(data), nil
}

// Decode parses a JSON descriptor and validates it.
func Decode(data string) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return nil, fmt.Errorf("decode descriptor: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func cloneList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return maps.Clone(m)
}
