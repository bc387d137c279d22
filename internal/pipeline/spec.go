package pipeline

import (
	"crypto/md5" //nolint:gosec // MD5 used for output naming, not security
	"encoding/hex"
	"encoding/json"
	"fmt"

	"video-renditions/internal/ffmpeg"

	"github.com/go-playground/validator/v10"
)

// Spec is one desired rendition.
type Spec struct {
	Name          string    `json:"name" yaml:"name" validate:"required"`
	Transform     Transform `json:"transform" yaml:"transform"`
	FileExtension string    `json:"fileExtension" yaml:"fileExtension" validate:"required,alphanum"`
	MaxWidth      int       `json:"maxWidth" yaml:"maxWidth" validate:"gt=0"`
	MaxHeight     int       `json:"maxHeight" yaml:"maxHeight" validate:"gt=0"`
}

// shortDigestLen is the number of trailing hex digits used in file names.
const shortDigestLen = 5

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ffop", func(fl validator.FieldLevel) bool {
		return KnownOperation(fl.Field().String())
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		t := sl.Current().Interface().(Transform)
		if t.Func != nil && t.Identity == "" {
			sl.ReportError(t.Identity, "Identity", "Identity", "required_with_func", "")
		}
	}, Transform{})
	return v
}

// Validate checks the fields of s and the identity rules of its transform.
func (s *Spec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return newValidationError(s.Name, err)
	}
	// Operations are applied to a scratch command so arity and argument
	// errors surface here rather than when the job is prepared. Func is
	// left out; it runs once, on the real command.
	ops := Transform{Operations: s.Transform.Operations}
	if _, err := ops.Apply(ffmpeg.New(nil).Input("validate")); err != nil {
		return &ValidationError{Spec: s.Name, Fields: []string{"Transform." + err.Error()}}
	}
	return nil
}

// identityView is what the digest is computed over. The transform is
// represented textually: its explicit identity tag and its operations.
type identityView struct {
	Name          string      `json:"name"`
	Identity      string      `json:"identity,omitempty"`
	Operations    []Operation `json:"operations"`
	FileExtension string      `json:"fileExtension"`
	MaxWidth      int         `json:"maxWidth"`
	MaxHeight     int         `json:"maxHeight"`
}

// Digest returns the hex md5 of the pipeline identity.
func (s *Spec) Digest() string {
	ops := s.Transform.Operations
	if ops == nil {
		ops = []Operation{}
	}
	data, err := json.Marshal(identityView{
		Name:          s.Name,
		Identity:      s.Transform.Identity,
		Operations:    ops,
		FileExtension: s.FileExtension,
		MaxWidth:      s.MaxWidth,
		MaxHeight:     s.MaxHeight,
	})
	if err != nil {
		// Only strings and ints are marshalled.
		panic(fmt.Sprintf("pipeline: marshal identity: %v", err))
	}
	sum := md5.Sum(data) //nolint:gosec // MD5 used for output naming, not security
	return hex.EncodeToString(sum[:])
}

// ShortDigest returns the last five hex digits of Digest, used in output
// file names.
func (s *Spec) ShortDigest() string {
	d := s.Digest()
	return d[len(d)-shortDigestLen:]
}
