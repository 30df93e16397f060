package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errRunFailed signals a failed run after its report was printed
var errRunFailed = errors.New("run failed")

var logLevelFlag string

var rootCmd = &cobra.Command{
	Use:   "testbench",
	Short: "TestBench - run JavaScript unit tests in a sandbox",
	Long: `TestBench runs JavaScript source code against Jest-style tests in an
isolated JavaScript runtime and reports per-test results and console output.

Use "serve" for the HTTP API or "run" for a one-off run from files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
