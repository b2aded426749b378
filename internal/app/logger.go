package app

import (
	"io"
	"log/slog"
)

// logLevels maps the configuration's level names onto slog levels. The map's
// zero value is LevelInfo, so anything unrecognized logs at info.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the diagnostics logger for one run from the parsed
// configuration. It never installs itself as the process default, and it
// writes to the error stream so plan and summary output on stdout stays
// machine-readable.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevels[cfg.LogLevel]}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
