package process

import (
	"context"
	"slices"
	"sync"
)

// Call is one invocation captured by RecordingRunner.
type Call struct {
	Command  Command
	Detached bool
}

// RecordingRunner is a Runner that records commands instead of executing them.
// Commands whose Name was registered with FailOn report an ExitError.
type RecordingRunner struct {
	// OnRun, if set, is invoked for every call before the scripted result is
	// returned; tests use it to materialize build artifacts.
	OnRun func(Command) error

	mu       sync.Mutex
	calls    []Call
	failures map[string]int
}

// FailOn makes every command named name exit with code.
func (r *RecordingRunner) FailOn(name string, code int) *RecordingRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures == nil {
		r.failures = make(map[string]int)
	}
	r.failures[name] = code
	return r
}

// Calls returns a copy of the recorded invocations in order.
func (r *RecordingRunner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func (r *RecordingRunner) Run(ctx context.Context, c Command) (Result, error) {
	return r.record(ctx, c, false)
}

func (r *RecordingRunner) Start(ctx context.Context, c Command) (Result, error) {
	return r.record(ctx, c, true)
}

func (r *RecordingRunner) record(ctx context.Context, c Command, detached bool) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, err
	}
	r.mu.Lock()
	r.calls = append(r.calls, Call{Command: c, Detached: detached})
	code, fail := r.failures[c.Name]
	onRun := r.OnRun
	r.mu.Unlock()

	if onRun != nil {
		if err := onRun(c); err != nil {
			return Result{ExitCode: -1}, err
		}
	}
	if fail {
		return Result{ExitCode: code}, &ExitError{Command: c.String(), Code: code}
	}
	return Result{}, nil
}
