package pipeline

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/livebuild/internal/config"
)

// RunStages executes stages in order, recording timing and applying each
// stage's policy. A fail_fast stage error or a cancellation stops the run and
// is returned; best_effort errors are recorded as warnings.
func RunStages(ctx context.Context, st *State, stages []StageDef) error {
	obs := st.observer()
	for _, def := range stages {
		select {
		case <-ctx.Done():
			se := &StageError{Kind: StageErrorCanceled, Stage: def.Name, Err: ctx.Err()}
			st.Report.record(def, 0, StageResultCanceled, se)
			obs.OnStageComplete(def.Name, 0, StageResultCanceled)
			return se
		default:
		}

		obs.OnStageStart(def.Name)
		t0 := time.Now()
		err := def.Fn(ctx, st)
		dur := time.Since(t0)

		result, se := classifyStageResult(ctx, def, err)
		if se == nil {
			st.Report.record(def, dur, result, nil)
		} else {
			st.Report.record(def, dur, result, se)
		}
		obs.OnStageComplete(def.Name, dur, result)

		if se != nil && se.Kind != StageErrorWarning {
			return se
		}
	}
	return nil
}

func classifyStageResult(ctx context.Context, def StageDef, err error) (StageResult, *StageError) {
	if err == nil {
		return StageResultSuccess, nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return StageResultCanceled, &StageError{Kind: StageErrorCanceled, Stage: def.Name, Err: err}
	}
	if def.Policy == config.PolicyBestEffort {
		return StageResultWarning, &StageError{Kind: StageErrorWarning, Stage: def.Name, Err: err}
	}
	return StageResultFatal, &StageError{Kind: StageErrorFatal, Stage: def.Name, Err: err}
}
