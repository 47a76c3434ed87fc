package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// ServiceName is stamped on every log line.
const ServiceName = "exstem-paper"

// Setup builds the process logger writing to stdout and installs it as the
// zerolog global, so packages logging through zerolog/log share its level
// and format.
//   - level: trace, debug, info, warn, error, fatal, panic (default info)
//   - format: "pretty" for console output, anything else for JSON lines
func Setup(level, format string) zerolog.Logger {
	l := New(os.Stdout, level, format)
	zlog.Logger = l
	return l
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string) zerolog.Logger {
	if format == "pretty" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(w).
		With().
		Timestamp().
		Str("service", ServiceName).
		Caller().
		Logger()
}
