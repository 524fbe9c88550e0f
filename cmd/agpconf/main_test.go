package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/woozymasta/agpconf/internal/cli"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ResolvesScript(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	path := filepath.Join("..", "..", "testdata", "1.build.gradle.kts")

	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-variant", "release", path})

	require.NoError(t, err)
	require.Contains(t, out.String(), `"applicationId": "com.example.app"`)
	require.Contains(t, out.String(), `"name": "release"`)
}

func TestRun_InvalidScript(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "build.gradle.kts")
	require.NoError(t, os.WriteFile(path, []byte("android {\n    defaultConfig {\n"), 0o600), "failed to set up test file")

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{path})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse")
}
