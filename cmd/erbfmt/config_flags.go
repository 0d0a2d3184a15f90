package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"erbfmt/internal/config"
)

func addStyleFlags(cmd *cobra.Command) {
	cmd.Flags().Int("indent", 0, "spaces per indentation level (default from config, 2)")
	cmd.Flags().Bool("tabs", false, "indent with tabs")
	cmd.Flags().Bool("no-blank-lines", false, "drop blank lines between tokens")
	cmd.Flags().Bool("no-script-formatter", false, "re-indent <script>/<style> bodies without esbuild")
	cmd.Flags().String("config", "", "config file (default: nearest .erbformatterrc or .erbformatter.toml)")
}

// resolveConfig loads the explicit --config file or discovers one from
// startDir, then applies explicitly set flags.
func resolveConfig(cmd *cobra.Command, startDir string) (config.Config, error) {
	flags := cmd.Flags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}

	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(startDir)
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}

	var file config.File
	if flags.Changed("indent") {
		n, err := flags.GetInt("indent")
		if err != nil {
			return config.Config{}, err
		}
		v := int64(n)
		file.IndentSize = &v
	}
	setBool := func(name string, negate bool, dst **bool) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		if negate {
			v = !v
		}
		*dst = &v
		return nil
	}
	if err := setBool("tabs", false, &file.UseTabs); err != nil {
		return config.Config{}, err
	}
	if err := setBool("no-blank-lines", true, &file.PreserveBlankLines); err != nil {
		return config.Config{}, err
	}
	if err := setBool("no-script-formatter", true, &file.ScriptFormatter); err != nil {
		return config.Config{}, err
	}

	cfg, err = cfg.Merge(file)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

// configStartDir picks the directory config discovery starts from.
func configStartDir(paths []string, stdinPath string) string {
	target := stdinPath
	if len(paths) > 0 && paths[0] != "-" {
		target = paths[0]
	}
	if target == "" {
		return "."
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return target
	}
	return filepath.Dir(target)
}
