package macho

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// newLogger builds the structured logger used for the trace/diagnostic
// points the Rust implementation this backend is ported from instruments
// with debug!/error! macros: symbol insertion, segment sizing, the offsets
// computed before each write phase, and the missing-symbol relocation
// warning (spec §4.4, §7). Handlers are fanned out with slog-multi so a
// caller can layer a machine-readable sink (trace is on req, text is
// always on) without this package choosing a single output format for
// every caller.
func newLogger(trace io.Writer) *slog.Logger {
	text := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	if trace == nil {
		return slog.New(text)
	}
	debug := slog.NewJSONHandler(trace, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(slogmulti.Fanout(text, debug))
}
