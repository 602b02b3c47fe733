// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Format selects how log lines are written
type Format string

const (
	FormatAuto    Format = "auto"
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Setup sets the global level and output. Logs always go to w (stderr in the
// binaries) so stdout stays free for the MCP stdio transport. An unknown
// level falls back to info and is returned as an error.
func Setup(w io.Writer, level string, format Format) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.DurationFieldUnit = time.Millisecond

	if useConsole(w, format) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return err
}

func useConsole(w io.Writer, format Format) bool {
	switch format {
	case FormatConsole:
		return true
	case FormatJSON:
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
