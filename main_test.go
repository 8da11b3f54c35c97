package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildBinary(t *testing.T) string {
	t.Helper()
	binary := filepath.Join(t.TempDir(), "specreport")
	buildCmd := exec.Command("go", "build", "-o", binary, ".")
	buildCmd.Stdout = os.Stdout
	buildCmd.Stderr = os.Stderr
	require.NoError(t, buildCmd.Run(), "Failed to build specreport binary")
	return binary
}

func TestOutfileFlag(t *testing.T) {
	tmpDir := t.TempDir()
	outfile := filepath.Join(tmpDir, "test_output.log")

	input, err := os.ReadFile(filepath.Join("testdata", "passing.jsonl"))
	require.NoError(t, err)

	cmd := exec.Command(buildBinary(t), "--notty", "--outfile", outfile)
	cmd.Dir = tmpDir
	cmd.Stdin = strings.NewReader(string(input))
	out, err := cmd.Output()
	require.NoError(t, err, "Failed to run specreport with --outfile")
	require.Contains(t, string(out), "3 passed, 0 failed, 1 ignored")

	require.FileExists(t, outfile, "Output file should be created")
	content, err := os.ReadFile(outfile)
	require.NoError(t, err)
	require.Equal(t, string(input), string(content), "Output file should contain all input lines")
}

func TestExitCodeOnFailure(t *testing.T) {
	input, err := os.ReadFile(filepath.Join("testdata", "failing.jsonl"))
	require.NoError(t, err)

	cmd := exec.Command(buildBinary(t), "--notty")
	cmd.Dir = t.TempDir()
	cmd.Stdin = strings.NewReader(string(input))
	err = cmd.Run()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.ExitCode())
}

func TestOutfileWithInvalidPath(t *testing.T) {
	cmd := exec.Command(buildBinary(t), "--outfile", "/nonexistent/directory/output.log")
	cmd.Dir = t.TempDir()
	cmd.Stdin = strings.NewReader(`{"Action":"engineStarted"}`)

	err := cmd.Run()
	require.Error(t, err, "Should fail when output file path is invalid")
}
