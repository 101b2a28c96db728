package worldfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
)

// Format is a world file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the encoding from a file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported world file extension: %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// ParseFormat converts a user supplied format name
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", name)
	}
}

// Load reads a world document from a JSON or YAML file
func Load(path string) (*types.WorldDocument, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open world file: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return doc, nil
}

// Decode reads a world document. Unknown fields are rejected so typos in
// hand-written files surface early.
func Decode(r io.Reader, format Format) (*types.WorldDocument, error) {
	var doc types.WorldDocument

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if err == io.EOF {
				return &doc, nil
			}
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}

	return &doc, nil
}

// Encode writes v (a document or a world state) in the given format
func Encode(w io.Writer, v interface{}, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %q", format)
	}
}

// Marshal encodes v into memory
func Marshal(v interface{}, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes v to path, choosing the encoding from the extension
func Save(path string, v interface{}) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	data, err := Marshal(v, format)
	if err != nil {
		return fmt.Errorf("failed to encode world file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write world file: %w", err)
	}
	return nil
}
