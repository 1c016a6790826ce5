package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/livebuild/internal/config"
	"git.home.luguber.info/inful/livebuild/internal/deploy"
	ferrors "git.home.luguber.info/inful/livebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/livebuild/internal/logfields"
	"git.home.luguber.info/inful/livebuild/internal/process"
	"git.home.luguber.info/inful/livebuild/internal/toolchain"
	"git.home.luguber.info/inful/livebuild/internal/vcs"
)

// Options selects which parts of the plan run.
type Options struct {
	// SkipBuild drops every stage before launch.
	SkipBuild bool
	// SkipLaunch drops the launch stage.
	SkipLaunch bool
}

// State is the mutable context shared by the stages of one run.
type State struct {
	Config   *config.Config
	Runner   process.Runner
	Deployer *deploy.Deployer
	Observer Observer
	Logger   *slog.Logger
	Report   *Report
}

// NewState wires a state for cfg using runner for every child process.
func NewState(cfg *config.Config, runner process.Runner, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		Config:   cfg,
		Runner:   runner,
		Deployer: deploy.NewDeployer(logger),
		Logger:   logger,
	}
}

func (st *State) observer() Observer {
	if st.Observer == nil {
		return NoopObserver{}
	}
	return st.Observer
}

// NewPlan builds the ordered stage list for cfg: build, deploy, the geode
// bundle and native build when in geode mode, then launch.
func NewPlan(cfg *config.Config, opts Options) *Pipeline {
	p := NewPipeline()
	if !opts.SkipBuild {
		p.Add(stageDef(cfg, StageBuild, describeCommand(toolchain.BuildCommand(cfg)), stageBuild))
		p.Add(stageDef(cfg, StageDeploy,
			fmt.Sprintf("copy %s -> %s", toolchain.ArtifactPath(cfg), toolchain.DeployPath(cfg)), stageDeploy))
		if cfg.Mode == config.ModeGeode && cfg.Geode != nil {
			p.Add(stageDef(cfg, StageBundle, describeCommand(toolchain.BundleCommand(cfg)), stageBundle))
			p.Add(stageDef(cfg, StageNativeBuild, describeCommand(toolchain.NativeBuildCommand(cfg)), stageNativeBuild))
		}
	}
	p.AddIf(!opts.SkipLaunch, stageDef(cfg, StageLaunch, describeCommand(toolchain.LaunchCommand(cfg)), stageLaunch))
	return p
}

func stageDef(cfg *config.Config, name StageName, describe string, fn Stage) StageDef {
	return StageDef{Name: name, Policy: cfg.PolicyFor(string(name)), Describe: describe, Fn: fn}
}

func describeCommand(c process.Command) string {
	if c.Dir == "" {
		return c.String()
	}
	return fmt.Sprintf("%s (in %s)", c.String(), c.Dir)
}

// Execute runs the plan for st.Config and returns the finished report. The
// error is the stage error that stopped the run, if any.
func Execute(ctx context.Context, st *State, opts Options) (*Report, error) {
	if st.Report == nil {
		st.Report = NewReport(uuid.NewString(), st.Config)
	}
	if head, err := vcs.ReadHead(st.Config.ProjectDir); err != nil {
		st.Logger.Debug("Could not read project revision", logfields.Error(err))
	} else {
		st.Report.Commit = head.Short()
		st.Report.Branch = head.Branch
	}

	st.Logger.Info("Run started",
		logfields.RunID(st.Report.RunID),
		logfields.Mode(string(st.Config.Mode)),
		slog.Bool("special", st.Config.Special))

	err := RunStages(ctx, st, NewPlan(st.Config, opts).Build())
	st.Report.Finish()
	st.observer().OnRunComplete(st.Report)
	return st.Report, err
}

func stageBuild(ctx context.Context, st *State) error {
	return st.run(ctx, toolchain.BuildCommand(st.Config), ferrors.CategoryToolchain, "build failed")
}

func stageDeploy(_ context.Context, st *State) error {
	dep, err := st.Deployer.Deploy(toolchain.ArtifactPath(st.Config), st.Config.DeployDir(), st.Config.Toolchain.Library)
	if err != nil {
		return err
	}
	st.Report.Deployment = &dep
	return nil
}

func stageBundle(ctx context.Context, st *State) error {
	return st.run(ctx, toolchain.BundleCommand(st.Config), ferrors.CategoryToolchain, "geode bundle failed")
}

func stageNativeBuild(ctx context.Context, st *State) error {
	return st.run(ctx, toolchain.NativeBuildCommand(st.Config), ferrors.CategoryToolchain, "geode native build failed")
}

func stageLaunch(ctx context.Context, st *State) error {
	cmd := toolchain.LaunchCommand(st.Config)
	if !st.Config.Game.Detach {
		return st.run(ctx, cmd, ferrors.CategoryLaunch, "game exited with an error")
	}
	st.Logger.Info("Launching game detached", logfields.Command(cmd.String()), logfields.Dir(cmd.Dir))
	res, err := st.Runner.Start(ctx, cmd)
	if err != nil {
		return commandError(err, ferrors.CategoryLaunch, "launch failed", cmd, res)
	}
	st.Logger.Info("Game started", slog.Int("pid", res.PID))
	return nil
}

// run executes cmd to completion and classifies a failure under category.
func (st *State) run(ctx context.Context, cmd process.Command, category ferrors.ErrorCategory, msg string) error {
	st.Logger.Info("Running command", logfields.Command(cmd.String()), logfields.Dir(cmd.Dir))
	res, err := st.Runner.Run(ctx, cmd)
	if err != nil {
		return commandError(err, category, msg, cmd, res)
	}
	st.Logger.Debug("Command finished", logfields.Command(cmd.String()), logfields.Duration(res.Duration))
	return nil
}

func commandError(err error, category ferrors.ErrorCategory, msg string, cmd process.Command, res process.Result) error {
	return ferrors.WrapError(err, category, msg).
		WithContext(logfields.KeyCommand, cmd.String()).
		WithContext(logfields.KeyDir, cmd.Dir).
		WithContext(logfields.KeyExitCode, res.ExitCode).
		Build()
}
