package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/livebuild/internal/logfields"
	"git.home.luguber.info/inful/livebuild/internal/metrics"
)

// Observer receives callbacks around stage execution and the run lifecycle.
type Observer interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnRunComplete(report *Report)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(StageName)                                {}
func (NoopObserver) OnStageComplete(StageName, time.Duration, StageResult) {}
func (NoopObserver) OnRunComplete(*Report)                                 {}

// RecorderObserver adapts metrics.Recorder into an Observer.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStageStart(StageName) {}

func (r RecorderObserver) OnStageComplete(stage StageName, d time.Duration, result StageResult) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveStageDuration(string(stage), d)
	r.Recorder.IncStageResult(string(stage), metrics.ResultLabel(result))
}

func (r RecorderObserver) OnRunComplete(report *Report) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveRunDuration(string(report.Mode), report.Duration())
	r.Recorder.IncRunOutcome(string(report.Mode), string(report.Outcome))
	if report.Deployment != nil {
		r.Recorder.SetLastArtifactBytes(report.Deployment.Bytes)
	}
}

// LogObserver writes stage progress to a structured logger.
type LogObserver struct{ Logger *slog.Logger }

func (o LogObserver) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o LogObserver) OnStageStart(stage StageName) {
	o.logger().Info("Stage started", logfields.Stage(string(stage)))
}

func (o LogObserver) OnStageComplete(stage StageName, d time.Duration, result StageResult) {
	level := slog.LevelInfo
	switch result {
	case StageResultWarning, StageResultCanceled:
		level = slog.LevelWarn
	case StageResultFatal:
		level = slog.LevelError
	case StageResultSuccess:
	}
	o.logger().Log(context.Background(), level, "Stage finished",
		logfields.Stage(string(stage)),
		logfields.Result(string(result)),
		logfields.Duration(d))
}

func (o LogObserver) OnRunComplete(report *Report) {
	attrs := []any{
		logfields.RunID(report.RunID),
		logfields.Mode(string(report.Mode)),
		logfields.Result(string(report.Outcome)),
		logfields.Duration(report.Duration()),
	}
	if report.Commit != "" {
		attrs = append(attrs, logfields.Commit(report.Commit))
	}
	o.logger().Info("Run finished", attrs...)
}

// Observers fans callbacks out to several observers in order.
type Observers []Observer

func (m Observers) OnStageStart(stage StageName) {
	for _, o := range m {
		o.OnStageStart(stage)
	}
}

func (m Observers) OnStageComplete(stage StageName, d time.Duration, result StageResult) {
	for _, o := range m {
		o.OnStageComplete(stage, d, result)
	}
}

func (m Observers) OnRunComplete(report *Report) {
	for _, o := range m {
		o.OnRunComplete(report)
	}
}
