package ffmpeg

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Arguments composes the final argument list, without the binary name.
//
// Layout per input: input options, "-i", source. Then global options, "-y"
// when any output is a file, the complex filter graph, and per output:
// flags, audio args, "-filter:a", video args, "-filter:v" (video filters
// followed by size filters), generic options and finally the target.
func (c *Command) Arguments() []string {
	args := make([]string, 0, 32)

	for _, in := range c.inputs {
		args = append(args, in.Options...)
		args = append(args, "-i", in.Source)
	}

	args = append(args, c.global...)

	if slices.ContainsFunc(c.outputs, (*Output).HasTarget) {
		args = append(args, "-y")
	}

	if len(c.complexFilters) > 0 {
		args = append(args, "-filter_complex", strings.Join(c.complexFilters, ";"))
	}

	for _, out := range c.outputs {
		args = append(args, out.arguments()...)
	}

	return args
}

func (o *Output) arguments() []string {
	var args []string

	keys := make([]string, 0, len(o.Flags))
	for k := range o.Flags {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		args = append(args, "-"+k, o.Flags[k])
	}

	args = append(args, o.Audio...)
	if len(o.AudioFilters) > 0 {
		args = append(args, "-filter:a", strings.Join(o.AudioFilters, ","))
	}

	args = append(args, o.Video...)
	videoFilters := append(append([]string(nil), o.VideoFilters...), o.SizeFilters...)
	if len(videoFilters) > 0 {
		args = append(args, "-filter:v", strings.Join(videoFilters, ","))
	}

	args = append(args, o.Options...)

	if o.HasTarget() {
		args = append(args, o.Target)
	}
	return args
}

var (
	reFixedSize   = regexp.MustCompile(`^(\d+)x(\d+)$`)
	reFixedWidth  = regexp.MustCompile(`^(\d+)x\?$`)
	reFixedHeight = regexp.MustCompile(`^\?x(\d+)$`)
	rePercentSize = regexp.MustCompile(`^(\d+)%$`)
)

// sizeFilters translates a size expression into scale filters. Derived
// dimensions are rounded down to even values, which most encoders require.
func sizeFilters(size string) ([]string, error) {
	size = strings.TrimSpace(size)

	if m := reFixedSize.FindStringSubmatch(size); m != nil {
		return []string{fmt.Sprintf("scale=w=%s:h=%s", m[1], m[2])}, nil
	}
	if m := reFixedWidth.FindStringSubmatch(size); m != nil {
		return []string{fmt.Sprintf("scale=w=%s:h=trunc(ow/a/2)*2", m[1])}, nil
	}
	if m := reFixedHeight.FindStringSubmatch(size); m != nil {
		return []string{fmt.Sprintf("scale=w=trunc(oh*a/2)*2:h=%s", m[1])}, nil
	}
	if m := rePercentSize.FindStringSubmatch(size); m != nil {
		pct, _ := strconv.Atoi(m[1])
		ratio := strconv.FormatFloat(float64(pct)/100, 'f', -1, 64)
		return []string{fmt.Sprintf("scale=w=trunc(iw*%s/2)*2:h=trunc(ih*%s/2)*2", ratio, ratio)}, nil
	}
	return nil, fmt.Errorf("invalid size specified: %q", size)
}

// FormatSize renders a width and height as a "WxH" size expression.
func FormatSize(width, height int) string {
	return strconv.Itoa(width) + "x" + strconv.Itoa(height)
}
