// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.elastic.co/ecszerolog"
)

// Setup installs the global logger. format "ecs" emits Elastic Common Schema JSON,
// anything else a human readable console stream.
func Setup(app, level, format string) {
	log.Logger = New(os.Stdout, app, level, format)
}

// New builds a logger writing to out.
func New(out io.Writer, app, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if strings.EqualFold(format, "ecs") {
		return ecszerolog.New(out).With().Str("app", app).Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Str("app", app).
		Timestamp().Logger()
}
