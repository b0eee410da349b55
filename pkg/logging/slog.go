package logging

import (
	"log/slog"
	"os"
)

// New builds the JSON logger every service uses. LOG_LEVEL accepts the slog
// level names (debug, info, warn, error).
func New(service string) *slog.Logger {
	var level slog.Level
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			level = slog.LevelInfo
		}
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With("service", service)
}
