// Package cli implements the virtgrid command-line interface.
//
// This package provides commands for generating and indexing layouts,
// answering viewport queries, browsing a layout in the terminal and
// serving virtualization sessions over HTTP. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Write a synthetic grid layout
//   - index: Build (or load from cache) the bucket index of a layout
//   - query: Print the keys visible in a viewport
//   - scroll-to: Compute the scroll offset that brings an item into view
//   - browse: Scroll through a layout interactively
//   - serve: Run the HTTP API
//   - cache: Manage the snapshot cache
//   - config: Print the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes index build and query timings.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Indexed 40000 items (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
