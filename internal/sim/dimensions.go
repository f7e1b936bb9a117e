package sim

import (
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
)

var ErrInvalidDimensions = errors.New("invalid dimensions")

// Dimension is one axis of a request context, e.g. lang with its possible values.
type Dimension struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

type Dimensions []Dimension

// DefaultDimensions is used when no fixture is given.
func DefaultDimensions() Dimensions {
	return Dimensions{
		{Name: "environment", Values: []string{"production", "staging", "regression", "development"}},
		{Name: "lang", Values: []string{"en-US", "en-GB", "fr-FR", "fr-CA", "de-DE", "es-ES", "it-IT", "ja-JP"}},
		{Name: "device", Values: []string{"desktop", "tablet", "phone"}},
		{Name: "partner", Values: []string{"foo", "bar", "baz", "qux"}},
		{Name: "experiment", Values: []string{"A", "B", "C", "D", "E"}},
	}
}

// Combinations returns the number of distinct contexts the dimensions span.
func (d Dimensions) Combinations() int {
	n := 1
	for _, dim := range d {
		n *= len(dim.Values)
	}
	return n
}

func (d Dimensions) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("%w: no dimensions", ErrInvalidDimensions)
	}
	seen := make(map[string]struct{}, len(d))
	for _, dim := range d {
		if dim.Name == "" {
			return fmt.Errorf("%w: dimension without name", ErrInvalidDimensions)
		}
		if _, dup := seen[dim.Name]; dup {
			return fmt.Errorf("%w: duplicated dimension %q", ErrInvalidDimensions, dim.Name)
		}
		seen[dim.Name] = struct{}{}
		if len(dim.Values) == 0 {
			return fmt.Errorf("%w: dimension %q has no values", ErrInvalidDimensions, dim.Name)
		}
	}
	return nil
}

// LoadDimensions reads a YAML list of dimensions:
//
//	- name: lang
//	  values: [en-US, fr-FR]
func LoadDimensions(path string) (Dimensions, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read dimensions %q: %w", path, err)
	}

	var dims Dimensions
	if err = yaml.Unmarshal(data, &dims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDimensions, err)
	}
	if err = dims.Validate(); err != nil {
		return nil, err
	}
	return dims, nil
}
