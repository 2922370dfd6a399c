package shared

import (
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures the structured logger used by every command
func SetupLogger(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// ParseLevel maps a config log level string onto the logger, keeping
// debug CLI flags as an override
func ParseLevel(logger *log.Logger, level string, debug bool) {
	if debug {
		logger.SetLevel(log.DebugLevel)
		return
	}
	if parsed, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}
}
