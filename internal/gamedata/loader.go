// Package gamedata provides the card model and the embedded balance tables
// used to generate cards and encounters.
package gamedata

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
)

//go:embed *.json
var dataFS embed.FS

// Load reads and unmarshals a JSON file from the embedded filesystem.
func Load[T any](filename string) (T, error) {
	return LoadFS[T](dataFS, filename)
}

// LoadFS reads and unmarshals a JSON file from fsys. Tests use it with
// fstest.MapFS to feed tables that differ from the shipped ones.
func LoadFS[T any](fsys fs.FS, filename string) (T, error) {
	var result T

	content, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return result, fmt.Errorf("read data file %s: %w", filename, err)
	}
	if err := json.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("parse data file %s: %w", filename, err)
	}
	return result, nil
}

// MustLoad reads and unmarshals a JSON file, panicking on error.
func MustLoad[T any](filename string) T {
	result, err := Load[T](filename)
	if err != nil {
		panic(err)
	}
	return result
}
