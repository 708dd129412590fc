// Package nbclean removes execution outputs from notebook documents and
// can replay their code cells first to check they still run.
package nbclean

import (
	"io"

	"github.com/ukaji3/nbclean-go/pkg/nbclean/validator"
	"go.uber.org/zap"
)

// DefaultExtension is the file extension of notebook documents.
const DefaultExtension = ".ipynb"

// Options configures a cleaning run.
type Options struct {
	// Check replays each notebook with Validator before stripping it.
	Check bool
	// Validator runs the replay. Required when Check is set.
	Validator *validator.Validator
	// DryRun reports which documents would change without writing them.
	DryRun bool
	// KeepGoing continues with the next document after a failure.
	// The failures are returned together at the end.
	KeepGoing bool
	// Extension selects files when a target is a directory.
	// If empty, DefaultExtension is used.
	Extension string
	// Stdout receives the console output. If nil, output is discarded.
	Stdout io.Writer
	// Logger receives diagnostics. If nil, logging is disabled.
	Logger *zap.Logger
}

// DefaultOptions returns options that only strip outputs.
func DefaultOptions() Options {
	return Options{
		Extension: DefaultExtension,
	}
}

func (o Options) extension() string {
	if o.Extension == "" {
		return DefaultExtension
	}
	return o.Extension
}

func (o Options) stdout() io.Writer {
	if o.Stdout == nil {
		return io.Discard
	}
	return o.Stdout
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
