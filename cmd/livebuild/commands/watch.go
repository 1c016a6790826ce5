package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/livebuild/internal/logfields"
	"git.home.luguber.info/inful/livebuild/internal/pipeline"
	"git.home.luguber.info/inful/livebuild/internal/watch"
)

// WatchCmd implements the 'watch' command. It never launches the game.
type WatchCmd struct {
	Initial bool `help:"Build once before waiting for changes" default:"true" negatable:""`
}

func (w *WatchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	opts := pipeline.Options{SkipLaunch: true}

	paths := make([]string, 0, len(cfg.Watch.Paths))
	for _, p := range cfg.Watch.Paths {
		paths = append(paths, cfg.ProjectPath(p))
	}

	rebuild := func(ctx context.Context, changed []string) error {
		slog.Info("Sources changed, rebuilding", slog.Int("files", len(changed)))
		_, err := runPipeline(ctx, g, cfg, opts)
		return err
	}

	watcher, err := watch.New(paths, cfg.Watch.Debounce, rebuild, slog.Default())
	if err != nil {
		return err
	}
	if w.Initial {
		if _, err := runPipeline(ctx, g, cfg, opts); err != nil {
			slog.Error("Initial build failed", logfields.Error(err))
		}
	}
	return watcher.Run(ctx)
}
