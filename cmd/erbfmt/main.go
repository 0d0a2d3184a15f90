package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"erbfmt/internal/version"
)

// errChangesNeeded is returned by check runs that found unformatted files.
// It maps to exit code 1 without an extra message.
var errChangesNeeded = errors.New("formatting changes required")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "erbfmt",
		Short: "Formatter for ERB templates",
		Long: `erbfmt re-indents ERB templates: markup nesting, Ruby block structure,
spacing inside <% %> tags, and <script>/<style> bodies.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupColor(cmd); err != nil {
				return err
			}
			return setupProfiling(cmd)
		},
	}

	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("log-level", "", "log level (none|error|warn|info|debug); default from config")
	root.PersistentFlags().String("log-format", "text", "log format (text|json|logfmt)")
	root.PersistentFlags().String("log-file", "", "write logs to file instead of stderr")
	root.PersistentFlags().String("ui", "auto", "progress UI (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().String("cpu-profile", "", "write CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write heap profile to file on exit")

	root.AddCommand(
		newFmtCmd(),
		newCheckCmd(),
		newTokenizeCmd(),
		newInitCmd(),
		newCacheCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	os.Exit(execute(newRootCmd()))
}

// execute runs root and reports a failure on its error writer.
// It returns the process exit code.
func execute(root *cobra.Command) int {
	err := root.Execute()
	stderr := root.ErrOrStderr()
	if stopErr := stopProfiling(); stopErr != nil {
		fmt.Fprintf(stderr, "erbfmt: profile: %v\n", stopErr)
	}
	if err == nil {
		return 0
	}
	if !errors.Is(err, errChangesNeeded) {
		fmt.Fprintf(stderr, "erbfmt: %v\n", err)
	}
	return 1
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "", "auto":
		color.NoColor = !isTerminalWriter(cmd.OutOrStdout())
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- fd fits in int
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
