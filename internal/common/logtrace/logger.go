// Package logtrace provides logging and tracing utilities for the application.
// It integrates with zerolog for structured logging and supports request tracing.
package logtrace

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger with Unix timestamp format.
// Configures zerolog to output to stderr with timestamps at info level.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// InitConsoleLogger switches the global logger to a human readable console writer.
// Used by the CLI where log lines share the terminal with command output.
func InitConsoleLogger(w io.Writer, debug bool) {
	if w == nil {
		w = os.Stderr
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

// SetLevel parses a level name ("debug", "info", ...) and applies it globally.
// Unknown names leave the current level untouched.
func SetLevel(name string) {
	if name == "" {
		return
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		log.Warn().Str("level", name).Msg("unknown log level")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}
