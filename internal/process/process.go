// Package process runs the external tools livebuild orchestrates: the compiler,
// the geode bundler and native build, and the game itself.
//
// Every invocation reports its exit status; deciding whether a failure stops
// the run is left to the caller.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Command is a single child process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env holds KEY=VALUE pairs appended to the inherited environment.
	Env []string

	shell bool
}

// String renders the command line, quoting arguments that contain spaces.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, p := range append([]string{c.Name}, c.Args...) {
		if p == "" || strings.ContainsAny(p, " \t\"") {
			p = fmt.Sprintf("%q", p)
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}

// Result describes a finished (or, for Start, a spawned) process.
type Result struct {
	ExitCode int
	PID      int
	Duration time.Duration
}

// Runner executes commands. Run blocks until the child exits; Start returns
// as soon as the child has been spawned.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	Start(ctx context.Context, cmd Command) (Result, error)
}

// ExitError reports a child that ran but exited non-zero.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
}

// ErrNotFound is returned when the command's executable cannot be located.
var ErrNotFound = errors.New("executable not found")

// ExecRunner is the os/exec backed Runner. Child output is streamed to
// Stdout and Stderr, which default to the parent's.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner wired to the parent's stdout and stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) command(ctx context.Context, c Command) *exec.Cmd {
	// #nosec G204 -- commands come from the user's own configuration
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	applyShell(cmd, c)
	return cmd
}

// Run starts c and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := r.command(ctx, c)
	slog.Debug("Running command", "command", c.String(), "dir", c.Dir)

	start := time.Now()
	err := cmd.Run()
	res := Result{ExitCode: -1, Duration: time.Since(start)}
	if cmd.Process != nil {
		res.PID = cmd.Process.Pid
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	return res, classify(c, err)
}

// Start spawns c without waiting for it. The child is released so it
// outlives livebuild.
func (r *ExecRunner) Start(ctx context.Context, c Command) (Result, error) {
	cmd := r.command(ctx, c)
	slog.Debug("Starting detached command", "command", c.String(), "dir", c.Dir)
	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, classify(c, err)
	}
	res := Result{PID: cmd.Process.Pid}
	if err := cmd.Process.Release(); err != nil {
		slog.Warn("Failed to release child process", "pid", res.PID, "error", err)
	}
	return res, nil
}

func classify(c Command, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: c.String(), Code: exitErr.ExitCode()}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, c.Name)
	}
	return fmt.Errorf("%s: %w", c.String(), err)
}
