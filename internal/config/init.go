package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// tomlFile is File without pointers, for writing.
type tomlFile struct {
	IndentSize         int    `toml:"indentSize"`
	UseTabs            bool   `toml:"useTabs"`
	PreserveBlankLines bool   `toml:"preserveBlankLines"`
	ScriptFormatter    bool   `toml:"scriptFormatter"`
	LogLevel           string `toml:"logLevel"`
}

// EncodeTOML renders c as a project file.
func EncodeTOML(c Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# erbfmt configuration\n")
	err := toml.NewEncoder(&buf).Encode(tomlFile{
		IndentSize:         c.IndentSize,
		UseTabs:            c.UseTabs,
		PreserveBlankLines: c.PreserveBlankLines,
		ScriptFormatter:    c.ScriptFormatter,
		LogLevel:           c.LogLevel,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default TOML project file into dir and returns its
// path. An existing file is never overwritten.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, TOMLName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	data, err := EncodeTOML(Default())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
