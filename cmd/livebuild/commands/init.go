package commands

import (
	"fmt"

	"git.home.luguber.info/inful/livebuild/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	_, _ = fmt.Fprintf(g.Stdout, "Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Stdout, "Edit loader_dir and game.dir, then run 'livebuild'")
	return nil
}

// MigrateCmd implements the 'migrate' command.
type MigrateCmd struct {
	From  string `help:"Positional configuration to convert" default:"gamepath.txt"`
	Force bool   `help:"Overwrite existing configuration file"`
}

func (m *MigrateCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Migrate(m.From, root.Config, m.Force)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Migrated %s to %s (%s)\n", m.From, root.Config, cfg)
	return nil
}
