package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	ferrors "git.home.luguber.info/inful/livebuild/internal/foundation/errors"
)

// Positional layout of gamepath.txt. Lines after lineMode exist only in geode mode.
const (
	lineLoaderDir = iota
	lineGameDir
	lineMode
	lineSpecial
	lineGeodeSDK
	lineGeodeProject
	lineGeodeDLL

	legacyBaseLines  = lineMode + 1
	legacyGeodeLines = lineGeodeDLL + 1
)

// LoadLegacy reads the positional configuration file: loader dir, game dir and
// build mode, followed in geode mode by the special flag ("yes" enables it)
// and the geode SDK, project and dll directories. Values are trimmed.
func LoadLegacy(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "open legacy config").
			Fatal().
			WithContext("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read legacy config").
			WithContext("path", path).
			Build()
	}

	if len(lines) < legacyBaseLines {
		return nil, tooFewLines(path, len(lines), legacyBaseLines)
	}
	mode, err := ParseBuildMode(lines[lineMode])
	if err != nil {
		return nil, ferrors.ValidationError(err.Error()).
			WithContext("path", path).
			WithContext("line", lineMode+1).
			Build()
	}

	cfg := &Config{
		Mode:      mode,
		LoaderDir: lines[lineLoaderDir],
		Game:      GameConfig{Dir: lines[lineGameDir]},
		Policies:  LegacyPolicies(),
		Source:    path,
		Legacy:    true,
	}

	if mode == ModeGeode {
		if len(lines) < legacyGeodeLines {
			return nil, tooFewLines(path, len(lines), legacyGeodeLines)
		}
		cfg.Special = lines[lineSpecial] == "yes"
		cfg.Geode = &GeodeConfig{
			SDKDir:     lines[lineGeodeSDK],
			ProjectDir: lines[lineGeodeProject],
			DLLDir:     lines[lineGeodeDLL],
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func tooFewLines(path string, got, want int) error {
	return ferrors.ConfigError(fmt.Sprintf("legacy config has %d lines, mode requires %d", got, want)).
		WithContext("path", path).
		Build()
}
