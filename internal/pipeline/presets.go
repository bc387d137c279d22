package pipeline

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPreset is wrapped by Select when a name has no preset.
var ErrUnknownPreset = errors.New("unknown preset")

// Presets is a named set of pipeline specs loaded from YAML.
type Presets struct {
	specs  []Spec
	byName map[string]int
}

type presetsFile struct {
	Pipelines []Spec `yaml:"pipelines"`
}

// LoadPresets reads a presets file.
func LoadPresets(path string) (*Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	return ParsePresets(data)
}

// ParsePresets parses presets YAML of the form:
//
//	pipelines:
//	  - name: webm-720
//	    fileExtension: webm
//	    maxWidth: 1280
//	    maxHeight: 720
//	    transform:
//	      operations:
//	        - op: videoCodec
//	          args: [libvpx-vp9]
func ParsePresets(data []byte) (*Presets, error) {
	var f presetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}

	p := &Presets{byName: make(map[string]int, len(f.Pipelines))}
	for i := range f.Pipelines {
		spec := f.Pipelines[i]
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if _, dup := p.byName[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate preset %q", spec.Name)
		}
		p.byName[spec.Name] = len(p.specs)
		p.specs = append(p.specs, spec)
	}
	return p, nil
}

// Lookup returns the preset with the given name.
func (p *Presets) Lookup(name string) (Spec, bool) {
	if p == nil {
		return Spec{}, false
	}
	i, ok := p.byName[name]
	if !ok {
		return Spec{}, false
	}
	return p.specs[i], true
}

// Select resolves names in order.
func (p *Presets) Select(names []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		spec, ok := p.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownPreset, name)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// All returns every preset in file order.
func (p *Presets) All() []Spec {
	if p == nil {
		return nil
	}
	return append([]Spec(nil), p.specs...)
}
