// Package config resolves formatter settings from project files.
//
// A project file is the first of FileNames found walking up from the start
// directory. The three rc names hold JSON (YAML is accepted too); the .toml
// name holds TOML. Keys missing from the file keep their defaults, and CLI
// flags set explicitly override both.
package config
