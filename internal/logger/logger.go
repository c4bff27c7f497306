package logger

import (
	"io"
	"log/slog"
	"os"
)

// New builds a JSON slog logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// InitJSONLogger configures and sets the default slog logger to use JSON format on stdout.
// Debug mode lowers the level from info to debug.
func InitJSONLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	l := New(os.Stdout, level)
	slog.SetDefault(l)
	return l
}
