// Package toolchain builds the external command lines for each build mode:
// the cargo invocation, the geode bundler and native build, and the game launch.
//
// Everything here is a pure function of the configuration; nothing is executed.
package toolchain

import (
	"path/filepath"
	"runtime"
	"strings"

	"git.home.luguber.info/inful/livebuild/internal/config"
	"git.home.luguber.info/inful/livebuild/internal/process"
)

// BuildArgs returns the compiler argv for mode.
//
// debug and release append the special feature as its own --features flag.
// geode always builds release with the geode feature, and joins the special
// feature into that list ("geode,special") instead of adding a second flag.
func BuildArgs(tc config.ToolchainConfig, mode config.BuildMode, special bool) []string {
	args := []string{tc.Command, "build"}
	switch mode {
	case config.ModeRelease:
		args = append(args, "--release")
	case config.ModeGeode:
		features := tc.GeodeFeature
		if special {
			features += "," + tc.SpecialFeature
		}
		return append(args, "--release", "--features", features)
	case config.ModeDebug:
	}
	if special {
		args = append(args, "--features", tc.SpecialFeature)
	}
	return args
}

// BuildCommand is BuildArgs wrapped as a command run in the project directory.
func BuildCommand(cfg *config.Config) process.Command {
	args := BuildArgs(cfg.Toolchain, cfg.Mode, cfg.Special)
	return process.Command{Name: args[0], Args: args[1:], Dir: cfg.ProjectDir}
}

// ArtifactSubdir is the cargo profile directory the library lands in.
// geode builds in release configuration.
func ArtifactSubdir(mode config.BuildMode) string {
	if mode == config.ModeDebug {
		return "debug"
	}
	return "release"
}

// ArtifactPath returns <project>/<target>/<profile>/<library>.
func ArtifactPath(cfg *config.Config) string {
	return filepath.Join(cfg.ProjectPath(cfg.Toolchain.TargetDir), ArtifactSubdir(cfg.Mode), cfg.Toolchain.Library)
}

// DeployPath returns the destination file for the built library.
func DeployPath(cfg *config.Config) string {
	return filepath.Join(cfg.DeployDir(), cfg.Toolchain.Library)
}

// BundleCommand runs the geode project's bundler script in the project directory.
func BundleCommand(cfg *config.Config) process.Command {
	return geodeCommand(cfg, cfg.Geode.BundleCommand)
}

// NativeBuildCommand runs the geode project's native release build.
func NativeBuildCommand(cfg *config.Config) process.Command {
	return geodeCommand(cfg, cfg.Geode.BuildCommand)
}

func geodeCommand(cfg *config.Config, line string) process.Command {
	c := process.ShellCommand(line, cfg.Geode.ProjectDir)
	c.Env = []string{"GEODE_SDK=" + cfg.Geode.SDKDir}
	return c
}

// LaunchCommand starts the game executable through the platform shell from
// inside the game directory.
func LaunchCommand(cfg *config.Config) process.Command {
	return process.ShellCommand(launchLine(cfg.Game.Executable, runtime.GOOS), cfg.Game.Dir)
}

func launchLine(exe, goos string) string {
	if goos != "windows" && !strings.ContainsRune(exe, '/') {
		exe = "./" + exe
	}
	if strings.ContainsAny(exe, " \t") {
		exe = `"` + exe + `"`
	}
	return exe
}
