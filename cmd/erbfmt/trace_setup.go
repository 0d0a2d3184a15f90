package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"erbfmt/internal/trace"
)

// setupTracing builds the tracer from the log flags and attaches it to the
// command context. fallbackLevel applies when --log-level was not given.
func setupTracing(cmd *cobra.Command, fallbackLevel string) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	levelStr, err := flags.GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	if !flags.Changed("log-level") {
		levelStr = fallbackLevel
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	if level == trace.LevelNone {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	formatStr, err := flags.GetString("log-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-format flag: %w", err)
	}
	logFormat, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	output, err := flags.GetString("log-file")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-file flag: %w", err)
	}

	cfg := trace.Config{
		Level:      level,
		Format:     logFormat,
		OutputPath: output,
	}
	if output == "" {
		cfg.Output = cmd.ErrOrStderr()
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "log: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "log: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
