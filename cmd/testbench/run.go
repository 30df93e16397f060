package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/TestBench/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/TestBench/backend/internal/sandbox"
	"github.com/GriffinCanCode/TestBench/backend/internal/utils"
)

var (
	sourceFlag  string
	testsFlag   string
	timeoutFlag time.Duration
	jsonFlag    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run source code against a test file once",
	Long: `Run a JavaScript source file against a test file and print the results.

The exit code is 1 when the run fails or any test fails.

Examples:
  testbench run --source add.js --tests add.test.js
  testbench run --source add.js --tests add.test.js --timeout 5s --json`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().StringVar(&sourceFlag, "source", "", "Source file (required)")
	runCmd.Flags().StringVar(&testsFlag, "tests", "", "Test file (required)")
	runCmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "Run timeout (overrides SANDBOX_TIMEOUT)")
	runCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the report as JSON")
	runCmd.MarkFlagRequired("source")
	runCmd.MarkFlagRequired("tests")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sandboxCfg := sandbox.Config{
		Timeout:          cfg.Sandbox.Timeout,
		MaxCallStackSize: cfg.Sandbox.MaxCallStack,
		MaxConcurrent:    1,
	}
	if timeoutFlag > 0 {
		sandboxCfg.Timeout = timeoutFlag
	}

	req, err := readRequest(sourceFlag, testsFlag)
	if err != nil {
		return err
	}

	level := "warn"
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	logger, err := logging.New(logging.CLIConfig(level))
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := sandbox.NewHost(sandboxCfg, logger.Component("sandbox"))
	defer host.Close()

	report := host.Run(ctx, req)
	if err := writeReport(cmd.OutOrStdout(), report, jsonFlag); err != nil {
		return err
	}
	if !passed(report) {
		return errRunFailed
	}
	return nil
}

func readRequest(sourcePath, testsPath string) (sandbox.Request, error) {
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return sandbox.Request{}, fmt.Errorf("reading source: %w", err)
	}
	tests, err := os.ReadFile(testsPath)
	if err != nil {
		return sandbox.Request{}, fmt.Errorf("reading tests: %w", err)
	}

	req := sandbox.Request{SourceCode: string(source), TestCode: string(tests)}
	if err := utils.ValidateCode("source", req.SourceCode); err != nil {
		return sandbox.Request{}, err
	}
	if err := utils.ValidateCode("tests", req.TestCode); err != nil {
		return sandbox.Request{}, err
	}
	return req, nil
}

// passed reports whether the run completed with no failing test
func passed(report sandbox.Report) bool {
	return report.Success && report.Failed() == 0
}

func writeReport(w io.Writer, report sandbox.Report, asJSON bool) error {
	if asJSON {
		data, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var sb strings.Builder
	depth := 0
	for _, entry := range report.Logs {
		switch entry.Type {
		case sandbox.KindGroup:
			fmt.Fprintf(&sb, "%s%s\n", strings.Repeat("  ", depth), entry.Message)
			depth++
		case sandbox.KindGroupEnd:
			if depth > 0 {
				depth--
			}
		default:
			fmt.Fprintf(&sb, "%s[%s] %s\n", strings.Repeat("  ", depth), entry.Type, entry.Message)
		}
	}
	if len(report.Logs) > 0 {
		sb.WriteString("\n")
	}

	for _, result := range report.Results {
		mark := "PASS"
		if result.Status == sandbox.StatusFail {
			mark = "FAIL"
		}
		fmt.Fprintf(&sb, "%s  %s (%dms)\n", mark, result.Name, result.Duration)
		if result.Error != "" {
			fmt.Fprintf(&sb, "      %s\n", result.Error)
		}
	}

	if !report.Success {
		fmt.Fprintf(&sb, "\n%s\n", report.Error)
	}
	fmt.Fprintf(&sb, "\nTests: %d passed, %d failed, %d total\n", report.Passed(), report.Failed(), len(report.Results))

	_, err := io.WriteString(w, sb.String())
	return err
}
