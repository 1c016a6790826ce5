package config

import (
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/livebuild/internal/foundation/errors"
)

// Init writes an example configuration to path. It refuses to overwrite an
// existing file unless force is set.
func Init(path string, force bool) error {
	example := Config{
		Version:    "1",
		Mode:       ModeDebug,
		ProjectDir: ".",
		LoaderDir:  "C:/Program Files (x86)/Steam/steamapps/common/Geometry Dash/adaf-dll/",
		Game: GameConfig{
			Dir:        "C:/Program Files (x86)/Steam/steamapps/common/Geometry Dash",
			Executable: DefaultExecutable,
		},
		Policies: DefaultPolicies(),
		Logging:  LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
	return write(path, &example, force)
}

// Migrate converts the positional file at legacyPath into YAML at path.
func Migrate(legacyPath, path string, force bool) (*Config, error) {
	cfg, err := LoadLegacy(legacyPath)
	if err != nil {
		return nil, err
	}
	if err := write(path, cfg, force); err != nil {
		return nil, err
	}
	return cfg, nil
}

func write(path string, cfg *Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.NewError(ferrors.CategoryConfig, "configuration file already exists (use --force to overwrite)").
			UserAction().
			WithContext("path", path).
			Build()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "marshal config").Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write config file").
			WithContext("path", path).
			Build()
	}
	return nil
}
