package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/livebuild/cmd/livebuild/commands"
	ferrors "git.home.luguber.info/inful/livebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/livebuild/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := commands.NewGlobal()

	parser := kong.Parse(cli,
		kong.Name("livebuild"),
		kong.Description("Build a live mod, deploy the library and launch the game."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global, cli),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	parser.BindTo(ctx, (*context.Context)(nil))

	err := parser.Run()
	stop()
	if err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
