package app

import (
	"io"
	"log/slog"
)

// logLevels maps the CLI level names onto slog levels. Unknown names fall
// back to info rather than failing, since cli.Parse already validated the
// flag.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the App's own slog.Logger from the configured level and
// format. The global default logger is left untouched so concurrent App
// instances (as in tests) never share handlers.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, ok := logLevels[levelStr]
	if !ok {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
