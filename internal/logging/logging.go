// Package logging builds the CLI logger used as the plugin's reporting channel.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Prefix tags every line, mirroring how the host prints plugin output.
const Prefix = "qriosls-jest"

// New returns a logger writing to w. verbose enables debug output.
func New(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Discard is a logger for tests and library callers that want silence.
func Discard() *log.Logger {
	return New(io.Discard, false)
}
