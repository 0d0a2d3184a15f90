package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"erbfmt/internal/diagfmt"
	"erbfmt/internal/driver"
	"erbfmt/internal/observ"
)

const stdinName = "<stdin>"

func newFmtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt [flags] [path...]",
		Short: "Format ERB templates",
		Long: `Format rewrites .erb files in place. Directories are walked recursively.
With no paths, or with "-", the template is read from stdin and written to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			check, err := cmd.Flags().GetBool("check")
			if err != nil {
				return err
			}
			return runFmt(cmd, args, check)
		},
	}
	cmd.Flags().Bool("check", false, "report files that would change without writing them")
	addFormatFlags(cmd)
	return cmd
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [path...]",
		Short: "Check that ERB templates are formatted",
		Long:  "Check is fmt --check: it lists files that would change and exits with status 1 if any would.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, true)
		},
	}
	addFormatFlags(cmd)
	return cmd
}

func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("stdout", false, "print formatted output instead of rewriting files")
	cmd.Flags().Bool("diff", false, "print a diff of the changes")
	cmd.Flags().String("format", "text", "output format (text|json)")
	cmd.Flags().String("lines", "", "only format lines from:to (1-based, inclusive)")
	cmd.Flags().String("stdin-path", "", "path used for config discovery and messages when reading stdin")
	cmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
	cmd.Flags().Int("jobs", 0, "parallel jobs (0 = GOMAXPROCS)")
	cmd.Flags().Bool("timings", false, "print phase timings to stderr")
	addStyleFlags(cmd)
}

type fmtFlags struct {
	check     bool
	stdout    bool
	diff      bool
	format    string
	lines     *driver.LineRange
	stdinPath string
	noCache   bool
	jobs      int
	timings   bool
}

func readFmtFlags(cmd *cobra.Command, check bool) (fmtFlags, error) {
	f := fmtFlags{check: check}
	flags := cmd.Flags()
	var err error
	if f.stdout, err = flags.GetBool("stdout"); err != nil {
		return f, err
	}
	if f.diff, err = flags.GetBool("diff"); err != nil {
		return f, err
	}
	if f.format, err = flags.GetString("format"); err != nil {
		return f, err
	}
	if f.stdinPath, err = flags.GetString("stdin-path"); err != nil {
		return f, err
	}
	if f.noCache, err = flags.GetBool("no-cache"); err != nil {
		return f, err
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, err
	}
	if f.timings, err = flags.GetBool("timings"); err != nil {
		return f, err
	}
	lines, err := flags.GetString("lines")
	if err != nil {
		return f, err
	}
	if lines != "" {
		if f.lines, err = driver.ParseLineRange(lines); err != nil {
			return f, err
		}
	}

	f.format = strings.ToLower(f.format)
	switch {
	case f.format != "text" && f.format != "json":
		return f, fmt.Errorf("fmt: unsupported output format %q", f.format)
	case f.stdout && f.check:
		return f, errors.New("fmt: --stdout cannot be used with --check")
	case f.stdout && f.format != "text":
		return f, errors.New("fmt: --stdout is only supported with text output")
	case f.diff && f.format != "text":
		return f, errors.New("fmt: --diff is only supported with text output")
	}
	return f, nil
}

func runFmt(cmd *cobra.Command, args []string, check bool) error {
	ff, err := readFmtFlags(cmd, check)
	if err != nil {
		return err
	}
	fromStdin := len(args) == 0 || len(args) == 1 && args[0] == "-"
	if !fromStdin && ff.lines != nil && len(args) != 1 {
		return errors.New("fmt: --lines needs exactly one file")
	}

	cfg, err := resolveConfig(cmd, configStartDir(args, ff.stdinPath))
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := driver.FormatOptions{
		Check:   ff.check,
		Stdout:  ff.stdout || ff.diff,
		Options: cfg.FormatOptions(),
		Lines:   ff.lines,
		Jobs:    ff.jobs,
	}
	if ff.timings {
		opts.Timer = observ.NewTimer()
		defer func() { fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Summary()) }()
	}

	if fromStdin {
		return runFmtStdin(cmd, ff, opts)
	}

	if !ff.noCache {
		cache, err := driver.OpenDiskCache("erbfmt")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "fmt: cache disabled: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}

	results, err := formatWithProgress(cmd, args, opts, ff)
	if err != nil {
		return err
	}
	// --diff без --check всё равно переписывает файлы
	if ff.diff && !ff.check && !ff.stdout {
		writeBack(results)
	}
	return renderResults(cmd, results, ff)
}

func formatWithProgress(cmd *cobra.Command, args []string, opts driver.FormatOptions, ff fmtFlags) ([]driver.FormatResult, error) {
	mode, err := uiModeFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	if quiet(cmd) || ff.stdout || ff.diff || ff.format != "text" || !shouldUseTUI(mode) {
		return driver.FormatPaths(cmd.Context(), args, opts)
	}
	files, err := driver.CollectFiles(cmd.Context(), args)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, driver.ErrNoFiles
	}
	title := "fmt"
	if ff.check {
		title = "check"
	}
	return runFormatWithUI(cmd.Context(), title, files, opts)
}

func writeBack(results []driver.FormatResult) {
	for i := range results {
		res := &results[i]
		if res.Err != nil || !res.Changed {
			continue
		}
		mode := os.FileMode(0o644)
		if info, err := os.Stat(res.Path); err == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(res.Path, res.Formatted, mode.Perm()); err != nil {
			res.Err = err
		}
	}
}

func runFmtStdin(cmd *cobra.Command, ff fmtFlags, opts driver.FormatOptions) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("fmt: failed to read stdin: %w", err)
	}
	name := stdinName
	if ff.stdinPath != "" {
		name = ff.stdinPath
	}
	res := driver.FormatSource(cmd.Context(), name, data, opts)
	if ff.check || ff.diff {
		return renderResults(cmd, []driver.FormatResult{res}, ff)
	}
	_, err = cmd.OutOrStdout().Write(res.Formatted)
	return err
}

func renderResults(cmd *cobra.Command, results []driver.FormatResult, ff fmtFlags) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	var failed, changed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		} else if res.Changed {
			changed++
		}
	}

	switch {
	case ff.format == "json":
		if err := renderFmtJSON(out, results, ff.check); err != nil {
			return err
		}
	case ff.stdout && !ff.diff:
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
				continue
			}
			if _, err := out.Write(res.Formatted); err != nil {
				return err
			}
		}
	default:
		if err := renderFmtText(cmd, results, ff); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("fmt: failed to format %d file(s)", failed)
	}
	if ff.check && changed > 0 {
		return errChangesNeeded
	}
	return nil
}

var (
	changedColor = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed, color.Bold)
)

func renderFmtText(cmd *cobra.Command, results []driver.FormatResult, ff fmtFlags) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	q := quiet(cmd)
	diffOpts := diagfmt.PrettyOpts{Color: !color.NoColor}

	var changed int
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(errOut, "%s %s: %v\n", failColor.Sprint("error:"), res.Path, res.Err)
			continue
		}
		if !res.Changed {
			continue
		}
		changed++
		if ff.diff {
			if err := diagfmt.FormatDiff(out, res.Path, res.Original, res.Formatted, diffOpts); err != nil {
				return err
			}
			continue
		}
		if q {
			continue
		}
		if ff.check {
			fmt.Fprintln(out, res.Path)
		} else {
			fmt.Fprintf(out, "reformatted %s\n", res.Path)
		}
	}

	if q || !ff.check || len(results) < 2 {
		return nil
	}
	summary := fmt.Sprintf("%d file(s) checked, %d would be reformatted", len(results), changed)
	if changed == 0 {
		summary = okColor.Sprint(summary)
	} else {
		summary = changedColor.Sprint(summary)
	}
	fmt.Fprintln(errOut, summary)
	return nil
}

func renderFmtJSON(w io.Writer, results []driver.FormatResult, check bool) error {
	type jsonResult struct {
		Path     string `json:"path"`
		Changed  bool   `json:"changed"`
		Cached   bool   `json:"cached,omitempty"`
		Error    string `json:"error,omitempty"`
		CheckRun bool   `json:"check"`
	}

	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{Path: res.Path, Changed: res.Changed, Cached: res.Cached, CheckRun: check}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
