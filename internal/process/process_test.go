//go:build !windows

package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandString(t *testing.T) {
	c := Command{Name: "cargo", Args: []string{"build", "--features", "geode,special"}}
	assert.Equal(t, "cargo build --features geode,special", c.String())

	c = Command{Name: "sh", Args: []string{"-c", "cd game && ./GeometryDash.exe"}}
	assert.Equal(t, `sh -c "cd game && ./GeometryDash.exe"`, c.String())
}

func TestExecRunner_Run(t *testing.T) {
	var stdout bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &stdout}
	dir := t.TempDir()

	c := ShellCommand(`pwd; echo "$LIVEBUILD_TEST"`, dir)
	c.Env = []string{"LIVEBUILD_TEST=hello"}
	res, err := r.Run(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	resolved, _ := filepath.EvalSymlinks(dir)
	assert.Contains(t, []string{dir, resolved}, lines[0])
	assert.Equal(t, "hello", lines[1])
}

func TestExecRunner_QuotedExecutableWithSpaces(t *testing.T) {
	var stdout bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &stdout}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "my game.sh"), []byte("#!/bin/sh\necho started\n"), 0o755))

	_, err := r.Run(t.Context(), ShellCommand(`"./my game.sh"`, dir))
	require.NoError(t, err)
	assert.Equal(t, "started", strings.TrimSpace(stdout.String()))
}

func TestExecRunner_ExitStatusPropagates(t *testing.T) {
	r := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	res, err := r.Run(context.Background(), ShellCommand("exit 3", ""))
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecRunner_NotFound(t *testing.T) {
	r := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	res, err := r.Run(context.Background(), Command{Name: "livebuild-definitely-missing-tool"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, -1, res.ExitCode)
}

func TestExecRunner_Start(t *testing.T) {
	r := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	res, err := r.Start(context.Background(), ShellCommand("exit 0", ""))
	require.NoError(t, err)
	assert.Positive(t, res.PID)
}

func TestRecordingRunner(t *testing.T) {
	r := (&RecordingRunner{}).FailOn("python", 2)
	ctx := context.Background()

	_, err := r.Run(ctx, Command{Name: "cargo", Args: []string{"build"}})
	require.NoError(t, err)
	res, err := r.Run(ctx, Command{Name: "python", Args: []string{"bundle.py"}})
	require.Error(t, err)
	assert.Equal(t, 2, res.ExitCode)
	_, err = r.Start(ctx, Command{Name: "game"})
	require.NoError(t, err)

	calls := r.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "cargo", calls[0].Command.Name)
	assert.Equal(t, "python", calls[1].Command.Name)
	assert.True(t, calls[2].Detached)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.Run(canceled, Command{Name: "cargo"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, r.Calls(), 3)
}
