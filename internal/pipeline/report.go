package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/livebuild/internal/config"
	"git.home.luguber.info/inful/livebuild/internal/deploy"
	"git.home.luguber.info/inful/livebuild/internal/process"
)

// Outcome is the typed enumeration of final run states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// StageReport records one executed stage.
type StageReport struct {
	Name     StageName
	Policy   config.StepPolicy
	Result   StageResult
	Duration time.Duration
	ExitCode int
	Error    string
}

// Report captures what happened during a run.
type Report struct {
	RunID   string
	Mode    config.BuildMode
	Special bool
	Commit  string
	Branch  string
	Start   time.Time
	End     time.Time

	Stages     []StageReport
	Warnings   []error // best-effort stage failures
	Errors     []error // the fatal error that stopped the run (at most one)
	Outcome    Outcome
	Deployment *deploy.Deployment
}

// NewReport starts a report for cfg.
func NewReport(runID string, cfg *config.Config) *Report {
	return &Report{
		RunID:   runID,
		Mode:    cfg.Mode,
		Special: cfg.Special,
		Start:   time.Now(),
	}
}

// record appends the outcome of a stage.
func (r *Report) record(def StageDef, d time.Duration, result StageResult, err error) {
	sr := StageReport{Name: def.Name, Policy: def.Policy, Result: result, Duration: d}
	if err != nil {
		sr.Error = err.Error()
		sr.ExitCode = exitCode(err)
		if result == StageResultWarning {
			r.Warnings = append(r.Warnings, err)
		} else {
			r.Errors = append(r.Errors, err)
		}
	}
	r.Stages = append(r.Stages, sr)
}

// Stage returns the report for name, if the stage ran.
func (r *Report) Stage(name StageName) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageReport{}, false
}

// DeriveOutcome sets Outcome from the recorded stages.
func (r *Report) DeriveOutcome() {
	for _, s := range r.Stages {
		if s.Result == StageResultCanceled {
			r.Outcome = OutcomeCanceled
			return
		}
	}
	switch {
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Finish stamps the end time and derives the outcome.
func (r *Report) Finish() {
	r.End = time.Now()
	r.DeriveOutcome()
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// Summary renders a one-line description of the run.
func (r *Report) Summary() string {
	parts := make([]string, 0, len(r.Stages))
	for _, s := range r.Stages {
		parts = append(parts, fmt.Sprintf("%s=%s", s.Name, s.Result))
	}
	return fmt.Sprintf("%s (%s) in %s: %s", r.Outcome, r.Mode, r.Duration().Round(time.Millisecond), strings.Join(parts, " "))
}

func exitCode(err error) int {
	var exitErr *process.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 0
}
