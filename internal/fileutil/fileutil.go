// Package fileutil holds small file and output helpers shared by the
// renderers and the CLI.
package fileutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteIfChanged writes data to path only when the on-disk content differs.
// Unchanged outputs keep their mtime, so repeated runs over the same input
// leave the output tree untouched.
func WriteIfChanged(path string, data []byte) error {
	_, err := WriteIfChangedTracked(path, data)
	return err
}

// WriteIfChangedTracked reports whether the file was actually written.
func WriteIfChangedTracked(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, err
	}
	return true, nil
}

// PrintJSON writes value to stdout as indented JSON.
func PrintJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
