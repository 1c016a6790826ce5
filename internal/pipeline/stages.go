package pipeline

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/livebuild/internal/config"
)

// Stage is a discrete step of a livebuild run.
type Stage func(ctx context.Context, st *State) error

// StageName is a strongly-typed identifier for a pipeline step. The values
// double as the keys of the policies section in the configuration.
type StageName string

// Canonical stage names, in execution order.
const (
	StageBuild       StageName = "build"
	StageDeploy      StageName = "deploy"
	StageBundle      StageName = "bundle"
	StageNativeBuild StageName = "native_build"
	StageLaunch      StageName = "launch"
)

// StageErrorKind classifies the outcome of a failed stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Run must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Recorded; the next stage still runs.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError wraps the failure of a single stage.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// StageResult captures the high-level outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// StageDef pairs a stage name with its policy and executing function.
type StageDef struct {
	Name   StageName
	Policy config.StepPolicy
	// Describe renders what the stage will do, for dry runs and logs.
	Describe string
	Fn       Stage
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ Defs []StageDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StageDef, 0, 5)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(def StageDef) *Pipeline {
	p.Defs = append(p.Defs, def)
	return p
}

// AddIf appends a stage only if cond is true.
func (p *Pipeline) AddIf(cond bool, def StageDef) *Pipeline {
	if cond {
		p.Add(def)
	}
	return p
}

// Build returns a copy of the stage definitions slice.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.Defs))
	copy(out, p.Defs)
	return out
}

// Names lists the stage names in order.
func (p *Pipeline) Names() []StageName {
	names := make([]StageName, len(p.Defs))
	for i, d := range p.Defs {
		names[i] = d.Name
	}
	return names
}
