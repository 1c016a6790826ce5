package config

import (
	"fmt"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/livebuild/internal/foundation/errors"
)

// Validate checks the configuration for the selected build mode.
func (c *Config) Validate() error {
	return newConfigurationValidator(c).validate()
}

// configurationValidator groups the per-section checks.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateMode(); err != nil {
		return err
	}
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateGeode(); err != nil {
		return err
	}
	if err := cv.validatePolicies(); err != nil {
		return err
	}
	return cv.validateLogging()
}

func (cv *configurationValidator) validateMode() error {
	if !buildModeNormalizer.Valid(cv.config.Mode) {
		return cv.fail(fmt.Sprintf("mode must be one of %s, got %q",
			strings.Join(buildModeNormalizer.ValidKeys(), ", "), cv.config.Mode))
	}
	return nil
}

func (cv *configurationValidator) validatePaths() error {
	if cv.config.Mode != ModeGeode && cv.config.LoaderDir == "" {
		return cv.fail("loader_dir is required")
	}
	if cv.config.Game.Dir == "" {
		return cv.fail("game.dir is required")
	}
	if cv.config.Toolchain.Library == "" || strings.ContainsAny(cv.config.Toolchain.Library, `/\`) {
		return cv.fail(fmt.Sprintf("toolchain.library must be a bare file name, got %q", cv.config.Toolchain.Library))
	}
	return nil
}

func (cv *configurationValidator) validateGeode() error {
	if cv.config.Mode != ModeGeode {
		return nil
	}
	g := cv.config.Geode
	if g == nil {
		return cv.fail("geode section is required in geode mode")
	}
	missing := []string{}
	if g.SDKDir == "" {
		missing = append(missing, "geode.sdk_dir")
	}
	if g.ProjectDir == "" {
		missing = append(missing, "geode.project_dir")
	}
	if g.DLLDir == "" {
		missing = append(missing, "geode.dll_dir")
	}
	if len(missing) > 0 {
		return cv.fail("missing " + strings.Join(missing, ", "))
	}
	return nil
}

func (cv *configurationValidator) validatePolicies() error {
	known := DefaultPolicies()
	for step, policy := range cv.config.Policies {
		if _, ok := known[step]; !ok {
			steps := make([]string, 0, len(known))
			for k := range known {
				steps = append(steps, k)
			}
			slices.Sort(steps)
			return cv.fail(fmt.Sprintf("unknown step %q in policies, valid steps: %s", step, strings.Join(steps, ", ")))
		}
		parsed, err := ParseStepPolicy(string(policy))
		if err != nil {
			return cv.fail(err.Error())
		}
		cv.config.Policies[step] = parsed
	}
	return nil
}

func (cv *configurationValidator) validateLogging() error {
	level, err := ParseLogLevel(string(cv.config.Logging.Level))
	if err != nil {
		return cv.fail(err.Error())
	}
	format, err := ParseLogFormat(string(cv.config.Logging.Format))
	if err != nil {
		return cv.fail(err.Error())
	}
	cv.config.Logging = LoggingConfig{Level: level, Format: format}
	return nil
}

func (cv *configurationValidator) fail(msg string) error {
	b := ferrors.ValidationError(msg)
	if cv.config.Source != "" {
		b = b.WithContext("path", cv.config.Source)
	}
	return b.Build()
}
