package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "abc", RunID("abc")},
		{"Mode", KeyMode, "geode", Mode("geode")},
		{"Stage", KeyStage, "deploy", Stage("deploy")},
		{"Policy", KeyPolicy, "best_effort", Policy("best_effort")},
		{"Command", KeyCommand, "cargo build", Command("cargo build")},
		{"Dir", KeyDir, "/game", Dir("/game")},
		{"Source", KeySource, "target/debug/live.dll", Source("target/debug/live.dll")},
		{"Dest", KeyDest, "/mods/live.dll", Dest("/mods/live.dll")},
		{"Commit", KeyCommit, "deadbeef", Commit("deadbeef")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.attr.Key != c.attrKey {
				t.Errorf("key = %q, want %q", c.attr.Key, c.attrKey)
			}
			if got := c.attr.Value.String(); got != c.attrVal {
				t.Errorf("value = %q, want %q", got, c.attrVal)
			}
		})
	}
}

func TestNumericAndErrorHelpers(t *testing.T) {
	if a := ExitCode(101); a.Key != KeyExitCode || a.Value.Int64() != 101 {
		t.Errorf("ExitCode attr = %v", a)
	}
	if a := Duration(1500 * time.Microsecond); a.Value.Float64() != 1.5 {
		t.Errorf("Duration attr = %v, want 1.5ms", a.Value.Float64())
	}
	if a := Error(nil); a.Value.String() != "" {
		t.Errorf("Error(nil) = %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Errorf("Error(boom) = %q", a.Value.String())
	}
}
