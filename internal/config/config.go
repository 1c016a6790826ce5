package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/livebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/livebuild/internal/foundation/normalization"
)

// DefaultPath is the structured configuration file looked up when --config is not given.
const DefaultPath = "livebuild.yaml"

// LegacyPath is the positional configuration file read by older launcher setups.
const LegacyPath = "gamepath.txt"

// BuildMode selects compiler flags, the artifact subdirectory and the deploy target.
type BuildMode string

const (
	ModeDebug   BuildMode = "debug"
	ModeRelease BuildMode = "release"
	ModeGeode   BuildMode = "geode"
)

var buildModeNormalizer = normalization.NewNormalizer("build mode", map[string]BuildMode{
	"debug":   ModeDebug,
	"release": ModeRelease,
	"geode":   ModeGeode,
}, ModeDebug)

// ParseBuildMode converts raw into a BuildMode, rejecting unknown values.
func ParseBuildMode(raw string) (BuildMode, error) {
	return buildModeNormalizer.Parse(raw)
}

// Config is the structured replacement for the positional gamepath.txt file.
type Config struct {
	Version    string                `yaml:"version,omitempty"`
	Mode       BuildMode             `yaml:"mode"`
	Special    bool                  `yaml:"special"`
	ProjectDir string                `yaml:"project_dir,omitempty"`
	LoaderDir  string                `yaml:"loader_dir"`
	Game       GameConfig            `yaml:"game"`
	Geode      *GeodeConfig          `yaml:"geode,omitempty"`
	Toolchain  ToolchainConfig       `yaml:"toolchain,omitempty"`
	Policies   map[string]StepPolicy `yaml:"policies,omitempty"`
	Logging    LoggingConfig         `yaml:"logging,omitempty"`
	Metrics    MetricsConfig         `yaml:"metrics,omitempty"`
	History    HistoryConfig         `yaml:"history,omitempty"`
	Watch      WatchConfig           `yaml:"watch,omitempty"`

	// Source is the file the configuration was read from.
	Source string `yaml:"-"`
	// Legacy is true when Source used the positional format.
	Legacy bool `yaml:"-"`
}

// GameConfig locates the game executable.
type GameConfig struct {
	Dir        string `yaml:"dir"`
	Executable string `yaml:"executable,omitempty"`
	// Detach starts the game and returns without waiting for it to exit.
	Detach bool `yaml:"detach,omitempty"`
}

// GeodeConfig holds the extra paths and tool invocations used in geode mode.
type GeodeConfig struct {
	SDKDir        string `yaml:"sdk_dir"`
	ProjectDir    string `yaml:"project_dir"`
	DLLDir        string `yaml:"dll_dir"`
	BundleCommand string `yaml:"bundle_command,omitempty"`
	BuildCommand  string `yaml:"build_command,omitempty"`
}

// ToolchainConfig describes the compiler invocation and its output layout.
type ToolchainConfig struct {
	Command        string `yaml:"command,omitempty"`
	TargetDir      string `yaml:"target_dir,omitempty"`
	Library        string `yaml:"library,omitempty"`
	SpecialFeature string `yaml:"special_feature,omitempty"`
	GeodeFeature   string `yaml:"geode_feature,omitempty"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// MetricsConfig enables the Prometheus textfile export written after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// HistoryConfig enables the SQLite run history. An empty Path disables it.
type HistoryConfig struct {
	Path  string `yaml:"path,omitempty"`
	Limit int    `yaml:"limit,omitempty"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Paths    []string      `yaml:"paths,omitempty"`
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Defaults for fields the positional format never carried.
const (
	DefaultToolchainCommand = "cargo"
	DefaultTargetDir        = "target"
	DefaultLibrary          = "live.dll"
	DefaultSpecialFeature   = "special"
	DefaultGeodeFeature     = "geode"
	DefaultExecutable       = "GeometryDash.exe"
	DefaultBundleCommand    = "python bundle.py"
	DefaultGeodeBuild       = "cmake --build build --config Release"
	DefaultHistoryLimit     = 20
	DefaultWatchDebounce    = 500 * time.Millisecond
)

// Load reads the configuration at path. Files ending in .txt use the positional
// reader; everything else is parsed as YAML.
func Load(path string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return LoadLegacy(path)
	}
	return loadYAML(path)
}

func loadYAML(path string) (*Config, error) {
	if err := loadEnvFiles(filepath.Dir(path)); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "load env file").Build()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read config file").
			Fatal().
			WithContext("path", path).
			Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "parse config file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	if cfg.Mode != "" {
		mode, err := ParseBuildMode(string(cfg.Mode))
		if err != nil {
			return nil, ferrors.ValidationError(err.Error()).WithContext("path", path).Build()
		}
		cfg.Mode = mode
	}
	cfg.Source = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills every optional field and normalizes directory paths.
func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.ProjectDir == "" {
		c.ProjectDir = "."
	}
	tc := &c.Toolchain
	if tc.Command == "" {
		tc.Command = DefaultToolchainCommand
	}
	if tc.TargetDir == "" {
		tc.TargetDir = DefaultTargetDir
	}
	if tc.Library == "" {
		tc.Library = DefaultLibrary
	}
	if tc.SpecialFeature == "" {
		tc.SpecialFeature = DefaultSpecialFeature
	}
	if tc.GeodeFeature == "" {
		tc.GeodeFeature = DefaultGeodeFeature
	}
	if c.Game.Executable == "" {
		c.Game.Executable = DefaultExecutable
	}
	if c.LoaderDir != "" {
		c.LoaderDir = EnsureTrailingSeparator(c.LoaderDir)
	}
	if c.Geode != nil {
		if c.Geode.BundleCommand == "" {
			c.Geode.BundleCommand = DefaultBundleCommand
		}
		if c.Geode.BuildCommand == "" {
			c.Geode.BuildCommand = DefaultGeodeBuild
		}
		if c.Geode.DLLDir != "" {
			c.Geode.DLLDir = EnsureTrailingSeparator(c.Geode.DLLDir)
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
	if c.History.Limit <= 0 {
		c.History.Limit = DefaultHistoryLimit
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = DefaultWatchDebounce
	}
	if len(c.Watch.Paths) == 0 {
		c.Watch.Paths = []string{"src", "Cargo.toml"}
	}
}

// DeployDir returns the directory that receives the built library for the configured mode.
func (c *Config) DeployDir() string {
	if c.Mode == ModeGeode && c.Geode != nil {
		return c.Geode.DLLDir
	}
	return c.LoaderDir
}

// ProjectPath resolves p against the project directory unless it is absolute.
func (c *Config) ProjectPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectDir, p)
}

// String renders the config as a short human-readable summary.
func (c *Config) String() string {
	return fmt.Sprintf("mode=%s special=%t loader=%s game=%s", c.Mode, c.Special, c.LoaderDir, c.Game.Dir)
}
