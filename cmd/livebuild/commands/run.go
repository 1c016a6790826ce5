package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/livebuild/internal/pipeline"
)

// RunCmd implements the 'run' command, the default.
type RunCmd struct {
	NoBuild  bool `name:"no-build" help:"Skip build and deploy, only launch"`
	NoLaunch bool `name:"no-launch" help:"Build and deploy but do not launch the game"`
}

func (r *RunCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	return runWith(ctx, g, root, pipeline.Options{SkipBuild: r.NoBuild, SkipLaunch: r.NoLaunch})
}

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	return runWith(ctx, g, root, pipeline.Options{SkipLaunch: true})
}

// LaunchCmd implements the 'launch' command.
type LaunchCmd struct{}

func (l *LaunchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	return runWith(ctx, g, root, pipeline.Options{SkipBuild: true})
}

func runWith(ctx context.Context, g *Global, root *CLI, opts pipeline.Options) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	_, err = runPipeline(ctx, g, cfg, opts)
	return err
}

// PlanCmd implements the 'plan' command: a dry run.
type PlanCmd struct {
	NoBuild  bool `name:"no-build" help:"Plan without build and deploy"`
	NoLaunch bool `name:"no-launch" help:"Plan without launch"`
}

func (p *PlanCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	plan := pipeline.NewPlan(cfg, pipeline.Options{SkipBuild: p.NoBuild, SkipLaunch: p.NoLaunch})

	_, _ = fmt.Fprintf(g.Stdout, "Plan for %s mode (special=%t)\n", cfg.Mode, cfg.Special)
	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	for i, def := range plan.Build() {
		_, _ = fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\n", i+1, def.Name, def.Policy, def.Describe)
	}
	return tw.Flush()
}
