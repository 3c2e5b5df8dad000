package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New builds the process logger. level is one of debug|info|warn|error (default
// info); format is json, console or auto. auto selects the console writer only
// when out is a terminal.
func New(level, format string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := out
	if useConsole(format, out) {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(writer).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", "morning-brief").
		Logger()
}

// FromEnv builds a logger writing to out from LOG_LEVEL and LOG_FORMAT.
func FromEnv(out io.Writer) zerolog.Logger {
	return New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), out)
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func useConsole(format string, out io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return false
	case "console", "pretty":
		return true
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
