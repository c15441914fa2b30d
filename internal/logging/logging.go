// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
)

// Setup installs log.DefaultLogger according to level and format.
// format is "json" or "console"; anything else falls back to console.
func Setup(level, format string) {
	log.DefaultLogger = New(level, format, os.Stderr)
}

// New builds a logger writing to w.
func New(level, format string, w io.Writer) log.Logger {
	logger := log.Logger{
		Level:      log.ParseLevel(strings.ToLower(level)),
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}

	if strings.EqualFold(format, "json") {
		logger.Writer = &log.IOWriter{Writer: w}
	} else {
		logger.Writer = &log.ConsoleWriter{
			Writer:      w,
			ColorOutput: false,
			QuoteString: true,
		}
	}
	return logger
}
