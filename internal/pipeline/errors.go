package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// UnsupportedPipelineError is returned when a command cannot be described
// by a Descriptor, typically because it lacks a single targeted output.
type UnsupportedPipelineError struct {
	Reason string
}

func (e *UnsupportedPipelineError) Error() string {
	return "unsupported pipeline: " + e.Reason
}

// ValidationError lists the invalid fields of a Spec.
type ValidationError struct {
	Spec   string
	Fields []string
}

func (e *ValidationError) Error() string {
	name := e.Spec
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("invalid pipeline %s: %s", name, strings.Join(e.Fields, "; "))
}

func newValidationError(spec string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid pipeline %s: %w", spec, err)
	}
	ve := &ValidationError{Spec: spec}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return ve
}
