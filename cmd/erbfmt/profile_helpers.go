package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"erbfmt/internal/prof"
)

var activeProfile *prof.Session

// setupProfiling starts the profiles requested by the persistent flags.
// stopProfiling finishes them once the command returns.
func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	cpuProfile, err := flags.GetString("cpu-profile")
	if err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := flags.GetString("mem-profile")
	if err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cpuProfile == "" && memProfile == "" {
		return nil
	}
	session, err := prof.Start(cpuProfile, memProfile)
	if err != nil {
		return fmt.Errorf("failed to start cpu profile: %w", err)
	}
	activeProfile = session
	return nil
}

func stopProfiling() error {
	s := activeProfile
	activeProfile = nil
	return s.Stop()
}
