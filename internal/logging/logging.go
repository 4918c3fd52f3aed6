// Package logging configures the process-wide logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Setup configures the default logger writing to w (stderr when nil).
// Unknown level names fall back to info.
func Setup(w io.Writer, level string) {
	if w == nil {
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "vapajomi",
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)

	log.SetDefault(logger)
}
