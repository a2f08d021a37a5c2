package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. format is "console" for
// human-readable output or "json"; an unknown level falls back to info.
func Setup(level, format string, out io.Writer) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var w io.Writer = out
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: out}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	return lvl
}
