package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/livebuild/internal/config"
	"git.home.luguber.info/inful/livebuild/internal/history"
	"git.home.luguber.info/inful/livebuild/internal/logfields"
	"git.home.luguber.info/inful/livebuild/internal/metrics"
	"git.home.luguber.info/inful/livebuild/internal/pipeline"
	"git.home.luguber.info/inful/livebuild/internal/process"
)

// LogLevelEnv overrides the configured log level.
const LogLevelEnv = "LIVEBUILD_LOG_LEVEL"

// Global carries the dependencies shared by every subcommand.
type Global struct {
	Runner process.Runner
	Stdout io.Writer
	Stderr io.Writer
}

// NewGlobal returns the production wiring: real child processes and the
// process's own stdout and stderr.
func NewGlobal() *Global {
	return &Global{Runner: process.NewExecRunner(), Stdout: os.Stdout, Stderr: os.Stderr}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (.yaml, or a positional .txt file)" default:"livebuild.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run     RunCmd     `cmd:"" default:"withargs" help:"Build, deploy and launch the game"`
	Build   BuildCmd   `cmd:"" help:"Build and deploy without launching"`
	Launch  LaunchCmd  `cmd:"" help:"Launch the game without building"`
	Plan    PlanCmd    `cmd:"" help:"Print the steps a run would execute"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Migrate MigrateCmd `cmd:"" help:"Convert a positional gamepath.txt into YAML"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild and deploy whenever sources change"`
	History HistoryCmd `cmd:"" help:"List recent runs"`
}

// AfterApply runs after flag parsing; set up logging once. The configured
// level is applied later, when the configuration has been loaded.
func (c *CLI) AfterApply() error {
	setupLogging(c.effectiveLevel(""), config.LogFormatText)
	return nil
}

// effectiveLevel resolves the log level: -v, then LIVEBUILD_LOG_LEVEL, then configured.
func (c *CLI) effectiveLevel(configured config.LogLevel) config.LogLevel {
	if c.Verbose {
		return config.LogLevelDebug
	}
	if env := os.Getenv(LogLevelEnv); env != "" {
		return config.NormalizeLogLevel(env)
	}
	if configured != "" {
		return configured
	}
	return config.LogLevelInfo
}

func setupLogging(level config.LogLevel, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the configuration named by --config. When the default
// YAML file is absent but a legacy gamepath.txt sits next to it, the legacy
// file is used instead.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.Config
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && isDefaultPath(path) {
		if _, lerr := os.Stat(config.LegacyPath); lerr == nil {
			slog.Warn("Using legacy positional configuration; run 'livebuild migrate' to convert it",
				logfields.Path(config.LegacyPath))
			path = config.LegacyPath
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	setupLogging(c.effectiveLevel(cfg.Logging.Level), cfg.Logging.Format)
	slog.Debug("Configuration loaded", logfields.Path(path), slog.String("config", cfg.String()))
	return cfg, nil
}

func isDefaultPath(path string) bool {
	return filepath.Clean(path) == config.DefaultPath
}

// runPipeline executes one run and handles the optional metrics textfile and
// history recording. The pipeline error is returned unchanged.
func runPipeline(ctx context.Context, g *Global, cfg *config.Config, opts pipeline.Options) (*pipeline.Report, error) {
	logger := slog.Default()
	st := pipeline.NewState(cfg, g.Runner, logger)
	observers := pipeline.Observers{pipeline.LogObserver{Logger: logger}}

	var reg *prom.Registry
	if cfg.Metrics.Textfile != "" {
		reg = prom.NewRegistry()
		observers = append(observers, pipeline.RecorderObserver{Recorder: metrics.NewPrometheusRecorder(reg)})
	}
	st.Observer = observers

	report, err := pipeline.Execute(ctx, st, opts)

	if reg != nil {
		if werr := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); werr != nil {
			logger.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(werr))
		}
	}
	if cfg.History.Path != "" {
		if herr := recordHistory(ctx, cfg.ProjectPath(cfg.History.Path), report); herr != nil {
			logger.Warn("Failed to record run history", logfields.Path(cfg.History.Path), logfields.Error(herr))
		}
	}

	_, _ = fmt.Fprintln(g.Stdout, report.Summary())
	return report, err
}

func recordHistory(ctx context.Context, path string, report *pipeline.Report) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	// The run may have been canceled; the record should still land.
	return store.Record(context.WithoutCancel(ctx), history.FromReport(report))
}
