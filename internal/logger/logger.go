// Package logger builds the zerolog logger used by the htmlutils command.
// By default only warnings and errors are printed; verbose mode adds
// debug messages explaining how the input was processed.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Verbose enables debug messages.
	Verbose bool
	// Output defaults to os.Stderr.
	Output io.Writer
	// JSON disables the human readable console format.
	JSON bool
}

// New creates a logger writing to opts.Output.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.TimeOnly,
			NoColor:    true,
		}
	}

	level := zerolog.WarnLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
