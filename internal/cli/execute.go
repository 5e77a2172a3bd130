package cli

import (
	"errors"

	"github.com/spf13/pflag"
)

// Execute runs the root command and maps any failure onto a stable exit
// code. Help requests exit zero.
func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		exitErr := NormalizeError(err)
		_ = writeCLIError(cmd.ErrOrStderr(), exitErr, jsonOutput(cmd.PersistentFlags()))
		return exitErr.Code
	}
	return 0
}

// jsonOutput reads the root --json flag so errors render in the format the
// caller asked for, even when the command itself never ran.
func jsonOutput(flags *pflag.FlagSet) bool {
	if flags == nil || flags.Lookup("json") == nil {
		return false
	}
	value, err := flags.GetBool("json")
	if err != nil {
		return false
	}
	return value
}
