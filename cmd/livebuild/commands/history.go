package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	ferrors "git.home.luguber.info/inful/livebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/livebuild/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of runs to show (defaults to history.limit)"`
}

func (h *HistoryCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return ferrors.ConfigError("run history is disabled; set history.path in the configuration").
			WithContext("path", cfg.Source).
			Build()
	}
	limit := h.Limit
	if limit <= 0 {
		limit = cfg.History.Limit
	}

	store, err := history.Open(cfg.ProjectPath(cfg.History.Path))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(g.Stdout, "No runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tMODE\tOUTCOME\tDURATION\tCOMMIT\tBRANCH\tRUN")
	for _, r := range runs {
		mode := r.Mode
		if r.Special {
			mode += "+special"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Started.Local().Format(time.DateTime), mode, r.Outcome,
			r.Duration.Round(time.Millisecond), orDash(r.Commit), orDash(r.Branch), r.ID)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
