package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyMode       = "mode"
	KeyStage      = "stage"
	KeyPolicy     = "policy"
	KeyResult     = "result"
	KeyCommand    = "command"
	KeyDir        = "dir"
	KeyPath       = "path"
	KeySource     = "src"
	KeyDest       = "dst"
	KeyExitCode   = "exit_code"
	KeyDurationMS = "duration_ms"
	KeyCommit     = "commit"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr   { return slog.String(KeyRunID, id) }
func Mode(m string) slog.Attr     { return slog.String(KeyMode, m) }
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }
func Policy(p string) slog.Attr   { return slog.String(KeyPolicy, p) }
func Result(r string) slog.Attr   { return slog.String(KeyResult, r) }
func Command(c string) slog.Attr  { return slog.String(KeyCommand, c) }
func Dir(d string) slog.Attr      { return slog.String(KeyDir, d) }
func Path(p string) slog.Attr     { return slog.String(KeyPath, p) }
func Source(p string) slog.Attr   { return slog.String(KeySource, p) }
func Dest(p string) slog.Attr     { return slog.String(KeyDest, p) }
func ExitCode(code int) slog.Attr { return slog.Int(KeyExitCode, code) }
func Commit(sha string) slog.Attr { return slog.String(KeyCommit, sha) }

// Duration records d in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
