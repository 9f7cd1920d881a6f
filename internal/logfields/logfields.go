package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeySource     = "source"
	KeyKind       = "kind"
	KeyModel      = "model"
	KeyAttempt    = "attempt"
	KeyDurationMS = "duration_ms"
	KeyTemplate   = "template"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyTokens     = "tokens"
	KeyRepo       = "repository"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Source(s string) slog.Attr       { return slog.String(KeySource, s) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Model(id string) slog.Attr       { return slog.String(KeyModel, id) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func Template(name string) slog.Attr  { return slog.String(KeyTemplate, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Tokens(n int) slog.Attr          { return slog.Int(KeyTokens, n) }
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Duration converts d to the canonical duration_ms attribute.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
