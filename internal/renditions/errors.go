package renditions

import (
	"errors"
	"fmt"
)

// EmptyPipelineListError is returned when Transcode is called with no
// pipelines.
type EmptyPipelineListError struct {
	Source string
}

func (e *EmptyPipelineListError) Error() string {
	if e.Source == "" {
		return "transcode requested with no pipelines"
	}
	return fmt.Sprintf("transcode of %s requested with no pipelines", e.Source)
}

// Is matches any EmptyPipelineListError.
func (e *EmptyPipelineListError) Is(target error) bool {
	var other *EmptyPipelineListError
	return errors.As(target, &other)
}

// ErrEmptyPipelineList matches every EmptyPipelineListError with errors.Is.
var ErrEmptyPipelineList error = &EmptyPipelineListError{}

// RenditionError wraps the failure of one pipeline.
type RenditionError struct {
	Pipeline string
	Err      error
}

func (e *RenditionError) Error() string {
	return fmt.Sprintf("rendition %s: %v", e.Pipeline, e.Err)
}

func (e *RenditionError) Unwrap() error {
	return e.Err
}
