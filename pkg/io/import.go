package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/spheregrid/pkg/errors"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

// ReadScene decodes a scene in format f from r on top of [DefaultScene] and
// validates it. ReadScene does not close r.
func ReadScene(r io.Reader, f Format) (Scene, error) {
	s := DefaultScene()
	if err := decode(r, f, &s); err != nil {
		return Scene{}, err
	}
	if s.Items == nil {
		s.Items = sphere.DefaultItems()
	}
	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

// ImportScene reads a scene file, choosing the format from its extension.
func ImportScene(path string) (Scene, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return Scene{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Scene{}, errors.New(errors.ErrCodeFileNotFound, "scene file not found: %s", path)
		}
		return Scene{}, err
	}
	defer file.Close()

	s, err := ReadScene(file, f)
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// itemsFile is the shape of a standalone items file.
type itemsFile struct {
	Items []sphere.Item `json:"items" toml:"items" yaml:"items"`
}

// ImportItems reads just an item list from a TOML, YAML or JSON file with a
// top-level items array.
func ImportItems(path string) ([]sphere.Item, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "items file not found: %s", path)
		}
		return nil, err
	}
	defer file.Close()

	var out itemsFile
	if err := decode(file, f, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := ValidateItems(out.Items); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out.Items, nil
}

// decode strictly decodes r into v. Unknown keys are errors in every format.
func decode(r io.Reader, f Format, v any) error {
	switch f {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && err != io.EOF {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode yaml")
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode json")
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
	return nil
}
