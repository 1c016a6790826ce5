package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("unknown mode").Build(), 2},
		{"config", ConfigError("missing file").Build(), 7},
		{"toolchain", ToolchainError("cargo failed").Build(), 11},
		{"deploy", DeployError("copy failed").Build(), 11},
		{"launch", LaunchError("no exe").Build(), 12},
		{"internal", InternalError("bug").Build(), 10},
		{"unclassified", errors.New("unknown error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logBuf, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logBuf, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(WrapError(errors.New("no such file"), CategoryConfig, "load config").
		WithContext("path", "livebuild.yaml").Build())

	if code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
	if got := out.String(); !strings.Contains(got, "load config: no such file") {
		t.Errorf("unexpected message %q", got)
	}
	if !strings.Contains(logBuf.String(), "path=livebuild.yaml") {
		t.Errorf("expected context in log output, got %q", logBuf.String())
	}
}
