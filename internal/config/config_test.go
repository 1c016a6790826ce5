package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/livebuild/internal/foundation/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestLoadYAML_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "livebuild.yaml", `
mode: release
loader_dir: ./loader
game:
  dir: ./game
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ModeRelease, cfg.Mode)
	assert.False(t, cfg.Special)
	assert.Equal(t, "./loader/", cfg.LoaderDir)
	assert.Equal(t, ".", cfg.ProjectDir)
	assert.Equal(t, DefaultToolchainCommand, cfg.Toolchain.Command)
	assert.Equal(t, DefaultTargetDir, cfg.Toolchain.TargetDir)
	assert.Equal(t, DefaultLibrary, cfg.Toolchain.Library)
	assert.Equal(t, DefaultExecutable, cfg.Game.Executable)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Equal(t, DefaultWatchDebounce, cfg.Watch.Debounce)
	assert.Equal(t, path, cfg.Source)
	assert.False(t, cfg.Legacy)
	assert.Equal(t, "./loader/", cfg.DeployDir())
}

func TestLoadYAML_GeodeAndPolicies(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "livebuild.yaml", `
mode: Geode
special: true
loader_dir: ./loader
game:
  dir: ./game
  detach: true
geode:
  sdk_dir: /opt/geode
  project_dir: ./geode-mod
  dll_dir: ./geode-mod/bin
policies:
  build: best_effort
  bundle: FAIL_FAST
watch:
  debounce: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ModeGeode, cfg.Mode)
	assert.True(t, cfg.Special)
	assert.True(t, cfg.Game.Detach)
	require.NotNil(t, cfg.Geode)
	assert.Equal(t, "./geode-mod/bin/", cfg.DeployDir())
	assert.Equal(t, DefaultBundleCommand, cfg.Geode.BundleCommand)
	assert.Equal(t, DefaultGeodeBuild, cfg.Geode.BuildCommand)
	assert.Equal(t, PolicyBestEffort, cfg.PolicyFor("build"))
	assert.Equal(t, PolicyFailFast, cfg.PolicyFor("bundle"))
	assert.Equal(t, PolicyBestEffort, cfg.PolicyFor("native_build"))
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestLoadYAML_EnvExpansion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "LIVEBUILD_TEST_GAME_DIR=/games/gd\n")
	path := writeFile(t, dir, "livebuild.yaml", `
mode: debug
loader_dir: ./loader
game:
  dir: ${LIVEBUILD_TEST_GAME_DIR}
`)
	t.Cleanup(func() { _ = os.Unsetenv("LIVEBUILD_TEST_GAME_DIR") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/games/gd", cfg.Game.Dir)
}

func TestLoadYAML_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		category ferrors.ErrorCategory
	}{
		{"unknown mode", "mode: profile\nloader_dir: a\ngame: {dir: b}\n", ferrors.CategoryValidation},
		{"missing mode", "loader_dir: a\ngame: {dir: b}\n", ferrors.CategoryValidation},
		{"missing game dir", "mode: debug\nloader_dir: a\n", ferrors.CategoryValidation},
		{"geode without section", "mode: geode\nloader_dir: a\ngame: {dir: b}\n", ferrors.CategoryValidation},
		{"geode missing dll dir", "mode: geode\ngame: {dir: b}\ngeode: {sdk_dir: s, project_dir: p}\n", ferrors.CategoryValidation},
		{"unknown policy step", "mode: debug\nloader_dir: a\ngame: {dir: b}\npolicies: {deploy2: fail_fast}\n", ferrors.CategoryValidation},
		{"unknown policy value", "mode: debug\nloader_dir: a\ngame: {dir: b}\npolicies: {deploy: sometimes}\n", ferrors.CategoryValidation},
		{"library with path", "mode: debug\nloader_dir: a\ngame: {dir: b}\ntoolchain: {library: x/live.dll}\n", ferrors.CategoryValidation},
		{"bad yaml", "mode: [debug\n", ferrors.CategoryConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "livebuild.yaml", tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, tt.category), "got %v", err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	for _, name := range []string{"livebuild.yaml", LegacyPath} {
		_, err := Load(filepath.Join(t.TempDir(), name))
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig), "got %v", err)
	}
}

func TestPolicyFor_Defaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, PolicyFailFast, cfg.PolicyFor("build"))
	assert.Equal(t, PolicyFailFast, cfg.PolicyFor("deploy"))
	assert.Equal(t, PolicyBestEffort, cfg.PolicyFor("bundle"))
	assert.Equal(t, PolicyBestEffort, cfg.PolicyFor("native_build"))
	assert.Equal(t, PolicyFailFast, cfg.PolicyFor("launch"))
	assert.Equal(t, PolicyFailFast, cfg.PolicyFor("unknown"))
}

func TestEnsureTrailingSeparator(t *testing.T) {
	tests := []struct{ in, want string }{
		{"C:/mods", "C:/mods/"},
		{"C:/mods/", "C:/mods/"},
		{`C:\mods\`, `C:\mods\`},
		{"./loader", "./loader/"},
		{"", "/"},
	}
	for _, tt := range tests {
		got := EnsureTrailingSeparator(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, got, EnsureTrailingSeparator(got), "not idempotent for %q", tt.in)
	}
}

func TestProjectPath(t *testing.T) {
	cfg := &Config{ProjectDir: "/work/mod"}
	assert.Equal(t, filepath.Join("/work/mod", "target"), cfg.ProjectPath("target"))
	abs := filepath.Join(t.TempDir(), "target")
	assert.Equal(t, abs, cfg.ProjectPath(abs))
}
