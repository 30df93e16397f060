package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TestBench/backend/internal/sandbox"
)

func sampleReport() sandbox.Report {
	return sandbox.Report{
		Success: true,
		Logs: []sandbox.LogEntry{
			{Type: sandbox.KindGroup, Message: "math"},
			{Type: sandbox.KindLog, Message: "hello"},
			{Type: sandbox.KindGroupEnd, Message: ""},
		},
		Results: []sandbox.TestOutcome{
			{Name: "adds", Status: sandbox.StatusPass, Duration: 1, Logs: []sandbox.LogEntry{}},
			{Name: "subtracts", Status: sandbox.StatusFail, Error: "Expected 1 but got 2", Logs: []sandbox.LogEntry{}},
		},
	}
}

func TestWriteReportText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), false))

	out := buf.String()
	assert.Contains(t, out, "math\n  [log] hello\n")
	assert.Contains(t, out, "PASS  adds (1ms)")
	assert.Contains(t, out, "FAIL  subtracts (0ms)\n      Expected 1 but got 2")
	assert.Contains(t, out, "Tests: 1 passed, 1 failed, 2 total")
}

func TestWriteReportFatal(t *testing.T) {
	var buf bytes.Buffer
	report := sandbox.Report{Success: false, Error: "Source Error: boom", Results: []sandbox.TestOutcome{}, Logs: []sandbox.LogEntry{}}
	require.NoError(t, writeReport(&buf, report, false))

	assert.Contains(t, buf.String(), "Source Error: boom")
	assert.False(t, passed(report))
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sampleReport(), true))

	var decoded sandbox.Report
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleReport(), decoded)
}

func TestPassed(t *testing.T) {
	report := sampleReport()
	assert.False(t, passed(report))

	report.Results = report.Results[:1]
	assert.True(t, passed(report))
}

func TestReadRequest(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.js")
	tests := filepath.Join(dir, "a.test.js")
	require.NoError(t, os.WriteFile(source, []byte("var a = 1;"), 0o644))
	require.NoError(t, os.WriteFile(tests, []byte("it('a', () => {});"), 0o644))

	req, err := readRequest(source, tests)
	require.NoError(t, err)
	assert.Equal(t, "var a = 1;", req.SourceCode)
	assert.Equal(t, "it('a', () => {});", req.TestCode)

	_, err = readRequest(filepath.Join(dir, "missing.js"), tests)
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("STORE_DRIVER", "memory")

	source := filepath.Join(dir, "add.js")
	tests := filepath.Join(dir, "add.test.js")
	require.NoError(t, os.WriteFile(source, []byte("function add(a, b) { return a + b; }"), 0o644))
	require.NoError(t, os.WriteFile(tests, []byte("it('adds', () => { expect(add(2, 3)).toBe(5); });"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--source", source, "--tests", tests, "--timeout", "2s"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		timeoutFlag = 0
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "PASS  adds")

	require.NoError(t, os.WriteFile(tests, []byte("it('adds', () => { expect(add(2, 3)).toBe(6); });"), 0o644))
	out.Reset()
	assert.ErrorIs(t, rootCmd.Execute(), errRunFailed)
	assert.Contains(t, out.String(), "FAIL  adds")
}
