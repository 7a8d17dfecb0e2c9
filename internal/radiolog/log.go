// Package radiolog wraps github.com/charmbracelet/log into a
// five-category logging shape - info/error/debug/rx/xmit - as named
// structured-logger fields instead of ANSI color codes.
package radiolog

import (
	"os"

	"github.com/charmbracelet/log"
)

// Category is one of the five logging categories a line is tagged with.
type Category string

const (
	Info     Category = "info"
	Error    Category = "error"
	Debug    Category = "debug"
	Received Category = "rx"
	Transmit Category = "xmit"
)

// Base is the root logger every component logger derives from.
var Base = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05.000",
})

// For returns a logger tagged with component (e.g. "frontend",
// "channel", "status"), one sub-logger per subsystem.
func For(component string) *log.Logger {
	return Base.With("component", component)
}

// Log writes one line at cat's matching level; rx and xmit lines are
// written at info level with a "direction" field naming the category.
func Log(l *log.Logger, cat Category, msg string, keyvals ...any) {
	switch cat {
	case Error:
		l.Error(msg, keyvals...)
	case Debug:
		l.Debug(msg, keyvals...)
	case Received, Transmit:
		l.With("direction", string(cat)).Info(msg, keyvals...)
	default:
		l.Info(msg, keyvals...)
	}
}
