// Package config provides JSON load/save helpers for the persisted artifacts.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ricomanifesto/sentrydigest/pkg/filesystem"
)

// LoadJSON decodes the JSON file at path into target.
// A missing file is reported as filesystem.ErrFileNotFound so callers can
// tell absence apart from corruption.
func LoadJSON(path string, target any) error {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return nil
}

// MarshalJSON encodes v as two-space indented JSON without HTML escaping.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveJSON writes v to path as indented JSON, replacing the file atomically.
func SaveJSON(path string, v any) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}

	if err := filesystem.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	return nil
}
