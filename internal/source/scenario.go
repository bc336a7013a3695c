// Package source reads and writes scenario files.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/fincast/internal/model"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadScenario reads a scenario file. Keys missing from the file keep the
// values of model.DefaultScenario; a missing name takes the file's base name.
// The result is validated.
func LoadScenario(path string) (model.Scenario, error) {
	format, err := FormatFor(path)
	if err != nil {
		return model.Scenario{}, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from --scenario or config
	if err != nil {
		return model.Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}

	s, err := Decode(data, format)
	if err != nil {
		return model.Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = baseName(path)
	}

	if err := s.Validate(); err != nil {
		return model.Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode parses scenario data on top of the defaults. Unknown keys are an
// error so a misspelt field does not silently keep its default.
func Decode(data []byte, format Format) (model.Scenario, error) {
	s := model.DefaultScenario()
	s.Name = ""

	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return s, fmt.Errorf("parsing toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return s, fmt.Errorf("unknown scenario keys: %s", strings.Join(keys, ", "))
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return s, fmt.Errorf("parsing yaml: %w", err)
		}
	default:
		return s, ErrUnknownFormat
	}

	return s, nil
}

// SaveScenario writes s to path in the format its extension names,
// creating parent directories as needed.
func SaveScenario(path string, s model.Scenario) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	data, err := Encode(s, format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating scenario dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing scenario: %w", err)
	}
	return nil
}

// Encode renders a scenario in the given format.
func Encode(s model.Scenario, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
	default:
		return nil, ErrUnknownFormat
	}
	return buf.Bytes(), nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
