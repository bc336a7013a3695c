package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a scenario file encoding.
type Format string

// Supported scenario file formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for scenario files with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown scenario format (want .toml, .yaml or .yml)")

// FormatFor picks the format from a file's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// DiscoveredFile is a scenario file found on disk.
type DiscoveredFile struct {
	Path   string
	Name   string // file name without extension
	Format Format
}
