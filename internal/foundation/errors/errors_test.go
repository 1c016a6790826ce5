package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "livebuild.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "livebuild.yaml" {
			t.Errorf("expected context file=livebuild.yaml, got %v", file)
		}
	})

	t.Run("Config errors are fatal and not retryable", func(t *testing.T) {
		err := ConfigError("bad mode").Build()
		if !err.IsFatal() {
			t.Error("expected config error to be fatal")
		}
		if err.CanRetry() {
			t.Error("expected config error to not be retryable")
		}
	})

	t.Run("Wrapped chain", func(t *testing.T) {
		cause := errors.New("exit status 101")
		err := WrapError(cause, CategoryToolchain, "cargo build failed").Build()
		wrapped := fmt.Errorf("stage build: %w", err)

		if !errors.Is(wrapped, cause) {
			t.Error("expected chain to reach the cause")
		}
		if !HasCategory(wrapped, CategoryToolchain) {
			t.Error("expected toolchain category through fmt wrapping")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified errors to report internal")
		}
	})

	t.Run("WithContext copies", func(t *testing.T) {
		base := DeployError("copy failed").Build()
		derived := base.WithContext("dst", "/mods/live.dll")
		if _, ok := base.Context().Get("dst"); ok {
			t.Error("WithContext must not mutate the receiver")
		}
		if v, _ := derived.Context().GetString("dst"); v != "/mods/live.dll" {
			t.Errorf("unexpected context value %q", v)
		}
	})
}
