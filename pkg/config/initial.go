package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of an initial-state document.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported state file: %s (must be .toml, .yaml, .yml, or .json)", path)
	}
}

// LoadInitialState reads the top-level key/value pairs of a state document.
// Each top-level key becomes one source of the bus.
func LoadInitialState(path string) (map[string]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	state, err := ParseInitialState(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse state %s: %w", filepath.Base(path), err)
	}
	return state, nil
}

func ParseInitialState(data []byte, format Format) (map[string]any, error) {
	state := make(map[string]any)

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &state); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &state); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	// An empty YAML document decodes to a nil map.
	if state == nil {
		state = make(map[string]any)
	}
	return state, nil
}

// WriteInitialState replaces the document at path with state, encoded in the
// format its extension names.
func WriteInitialState(path string, state map[string]any) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		err = toml.NewEncoder(&buf).Encode(state)
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(state)
		if err == nil {
			err = enc.Close()
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(state)
	}
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
