// Package geometry computes rendition frame sizes.
//
// The same Resolve call predicts the size reported to callers before a
// transcode runs and chooses the size filter the worker applies, so the
// two can never disagree.
package geometry

import "math"

// Dimensions of a probed source. Zero values mean unknown.
type Dimensions struct {
	Width  int
	Height int
}

// Known reports whether both dimensions were probed.
func (d Dimensions) Known() bool {
	return d.Width > 0 && d.Height > 0
}

// Bounds is the box a rendition must fit.
type Bounds struct {
	MaxWidth  int
	MaxHeight int
}

// Result is a resolved output size.
type Result struct {
	Width       int
	Height      int
	AspectRatio float64
	// Fallback is set when the source size was unknown and the raw bounds
	// were used.
	Fallback bool
}

// Resolve fixes one side from bounds and derives the other from the source
// aspect ratio. Portrait sources (ratio < 1) keep MaxWidth; landscape and
// square sources keep MaxHeight. Unknown sources resolve to the raw bounds
// with an aspect ratio of 1.
func Resolve(src Dimensions, b Bounds) Result {
	if !src.Known() {
		return Result{
			Width:       b.MaxWidth,
			Height:      b.MaxHeight,
			AspectRatio: 1,
			Fallback:    true,
		}
	}

	ratio := float64(src.Width) / float64(src.Height)
	if ratio < 1 {
		return Result{
			Width:       b.MaxWidth,
			Height:      round(float64(b.MaxWidth) / ratio),
			AspectRatio: ratio,
		}
	}
	return Result{
		Width:       round(float64(b.MaxHeight) * ratio),
		Height:      b.MaxHeight,
		AspectRatio: ratio,
	}
}

// round rounds halves towards positive infinity.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Tightest returns the smallest width and smallest height over all bounds.
// Both are zero when bounds is empty.
func Tightest(bounds []Bounds) Bounds {
	if len(bounds) == 0 {
		return Bounds{}
	}
	out := bounds[0]
	for _, b := range bounds[1:] {
		out.MaxWidth = min(out.MaxWidth, b.MaxWidth)
		out.MaxHeight = min(out.MaxHeight, b.MaxHeight)
	}
	return out
}
