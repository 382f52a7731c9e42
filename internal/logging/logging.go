// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/aws/smithy-go/logging"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLevel names the environment variable holding the log level.
const EnvLevel = "LOG_LEVEL"

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// fall back to warn.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "panic":
		return zerolog.PanicLevel
	case "fatal":
		return zerolog.FatalLevel
	case "error":
		return zerolog.ErrorLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.WarnLevel
	}
}

// Setup installs a console logger on w as the global logger. An explicit
// level wins over LOG_LEVEL. Colour is only used when w is a terminal.
func Setup(w io.Writer, level string) zerolog.Logger {
	if level == "" {
		level = os.Getenv(EnvLevel)
	}
	zerolog.SetGlobalLevel(ParseLevel(level))

	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: noColor})
	return log.Logger
}

// SDKLogger adapts a zerolog logger to the AWS SDK's logging interface.
type SDKLogger struct {
	Log *zerolog.Logger
}

var _ logging.Logger = (*SDKLogger)(nil)

// Logf implements logging.Logger.
func (l *SDKLogger) Logf(classification logging.Classification, format string, v ...interface{}) {
	switch classification {
	case logging.Warn:
		l.Log.Warn().Msgf(format, v...)
	case logging.Debug:
		if strings.Contains(format, "retrying request") {
			l.Log.Info().Msgf(format, v...)
		} else {
			l.Log.Debug().Msgf(format, v...)
		}
	default:
		l.Log.Error().Msgf(format, v...)
	}
}
