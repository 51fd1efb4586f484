// Package logger builds the process-wide slog logger and the HTTP access
// logging middleware used by every service binary.
package logger

import (
	"log/slog"
	"os"
)

// BritishTimeFormat is the day-first timestamp layout used across log output.
const BritishTimeFormat = "02.01.2006 15:04:05"

// Config selects the log level and output format. LogLevel accepts the
// slog spellings ("debug", "info", "warn", "error"); LogHumanFriendly picks
// text output over JSON.
type Config struct {
	LogLevel         string
	LogHumanFriendly bool
}

// ParseLevel maps a level name to its slog.Level, falling back to Info when
// the name is unknown.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}

	return lvl
}

// NewFromConfig constructs a stdout logger per the config: a text handler
// for humans, a JSON handler for log shippers, timestamps in
// BritishTimeFormat either way.
func NewFromConfig(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(cfg.LogLevel),
		AddSource:   false,
		ReplaceAttr: formatTimeAttr,
	}

	var handler slog.Handler
	if cfg.LogHumanFriendly {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func formatTimeAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.String(slog.TimeKey, a.Value.Time().Format(BritishTimeFormat))
	}

	return a
}
