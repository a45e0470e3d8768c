// Package cli implements the decksmith command-line interface.
//
// The CLI imports card lists into deck files, edits decks, and exports them
// as image archives or print-ready A4 sheets. It is built using cobra and
// logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - import: Resolve a plain-text card list against the catalog
//   - export: Build an image archive or a paginated print sheet
//   - deck: Show and edit a deck file
//   - sets: Search the set catalog, optionally with an interactive picker
//   - serve: Expose the same operations over HTTP
//   - cache: Manage the response and image cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
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

// elapsed tracks the start time of an operation and logs completion with the
// elapsed duration.
type elapsed struct {
	logger *log.Logger
	start  time.Time
}

func newElapsed(l *log.Logger) *elapsed {
	return &elapsed{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Imported 58 cards (4.213s)".
func (e *elapsed) done(msg string) {
	e.logger.Infof("%s (%s)", msg, time.Since(e.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
