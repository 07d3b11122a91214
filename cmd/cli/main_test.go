package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A manifest with a syntax error makes app.NewApp panic while loading.
	invalidHCL := `
		kind "Blur" {
			per_item = true
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	manifestPath := filepath.Join(tempDir, "kinds.hcl")
	require.NoError(t, os.WriteFile(manifestPath, []byte(invalidHCL), 0600), "failed to set up manifest")
	configPath := filepath.Join(tempDir, "depends.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("manifests: ["+manifestPath+"]\n"), 0600), "failed to set up config")

	args := []string{"-config", configPath, filepath.Join(tempDir, "shot.json")}
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	require.Contains(t, runErr.Error(), "application startup panicked")
	require.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_MissingWorkflow(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{filepath.Join(t.TempDir(), "missing.json")})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to open workflow")
}
