package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"erbfmt/internal/format"
)

// FileNames are the recognized project files, in lookup order per directory.
var FileNames = []string{
	".erbformatterrc",
	".erbformatterrc.json",
	".erbformatter.json",
	".erbformatter.toml",
}

// TOMLName is the file written by `erbfmt init`.
const TOMLName = ".erbformatter.toml"

// ErrNotFound is returned by Find when no project file exists up to the root.
var ErrNotFound = errors.New("no erbformatter config found")

// Config is the resolved configuration.
type Config struct {
	IndentSize         int    `validate:"min=1,max=16"`
	UseTabs            bool   `validate:"-"`
	PreserveBlankLines bool   `validate:"-"`
	ScriptFormatter    bool   `validate:"-"`
	LogLevel           string `validate:"oneof=none off error warn info debug"`

	// Path is the file the values came from, "" for defaults only.
	Path string `validate:"-"`
}

// File holds the keys of a project file; nil means the key is absent.
type File struct {
	IndentSize         *int64  `yaml:"indentSize" toml:"indentSize"`
	UseTabs            *bool   `yaml:"useTabs" toml:"useTabs"`
	PreserveBlankLines *bool   `yaml:"preserveBlankLines" toml:"preserveBlankLines"`
	ScriptFormatter    *bool   `yaml:"scriptFormatter" toml:"scriptFormatter"`
	LogLevel           *string `yaml:"logLevel" toml:"logLevel"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		IndentSize:         2,
		PreserveBlankLines: true,
		ScriptFormatter:    true,
		LogLevel:           "none",
	}
}

// Find walks up from startDir and returns the first project file.
func Find(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			st, err := os.Stat(candidate)
			if err == nil && !st.IsDir() {
				return candidate, nil
			}
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrNotFound
}

// Discover finds and loads the project file for startDir. Without one the
// defaults are returned.
func Discover(startDir string) (Config, error) {
	path, err := Find(startDir)
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	return Load(path)
}

// Load reads one project file over the defaults.
func Load(path string) (Config, error) {
	f, err := ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Default().Merge(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ReadFile decodes a project file by its name.
func ReadFile(path string) (File, error) {
	var f File
	if strings.HasSuffix(path, ".toml") {
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return File{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return f, nil
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("%s: failed to parse: %w", path, err)
	}
	return f, nil
}

// Merge applies the keys present in f.
func (c Config) Merge(f File) (Config, error) {
	if f.IndentSize != nil {
		n, err := safecast.Conv[int](*f.IndentSize)
		if err != nil {
			return Config{}, fmt.Errorf("indentSize: %w", err)
		}
		c.IndentSize = n
	}
	if f.UseTabs != nil {
		c.UseTabs = *f.UseTabs
	}
	if f.PreserveBlankLines != nil {
		c.PreserveBlankLines = *f.PreserveBlankLines
	}
	if f.ScriptFormatter != nil {
		c.ScriptFormatter = *f.ScriptFormatter
	}
	if f.LogLevel != nil {
		c.LogLevel = strings.ToLower(strings.TrimSpace(*f.LogLevel))
	}
	return c, nil
}

var validate = validator.New()

// Validate checks value ranges.
func (c Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("invalid %s %v (%s=%s)", keyName(fe.Field()), fe.Value(), fe.Tag(), fe.Param()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func keyName(field string) string {
	switch field {
	case "IndentSize":
		return "indentSize"
	case "LogLevel":
		return "logLevel"
	default:
		return field
	}
}

// FormatOptions converts the configuration to formatter options.
func (c Config) FormatOptions() format.Options {
	return format.Options{
		IndentWidth:        c.IndentSize,
		UseTabs:            c.UseTabs,
		PreserveBlankLines: c.PreserveBlankLines,
		ScriptDelegate:     c.ScriptFormatter,
	}
}
