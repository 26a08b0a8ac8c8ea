// Package logx holds the shared zerolog logger for the shell binaries.
// Nothing is configured at import time; each binary calls Configure with
// the level it resolved from its own flags or environment.
package logx

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Log is the shared logger used throughout the shell.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

var levels = map[string]zerolog.Level{
	"all":      zerolog.TraceLevel,
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"fatal":    zerolog.FatalLevel,
	"none":     zerolog.Disabled,
	"off":      zerolog.Disabled,
	"disabled": zerolog.Disabled,
}

// Configure sets the global log level. The level string is tolerant of
// case and common synonyms; empty or unknown values mean info.
func Configure(level string) {
	lvl, ok := levels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
