// Package validator replays a notebook's code cells against a fresh
// interpreter and reports which cells raise.
package validator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ukaji3/nbclean-go/pkg/nbclean/models"
	"go.uber.org/zap"
)

const (
	// DefaultCellTimeout bounds the wait for a single cell's reply.
	DefaultCellTimeout = 300 * time.Second
	// DefaultStartupTimeout bounds the liveness handshake.
	DefaultStartupTimeout = 60 * time.Second
	// HandshakeCode is the no-op statement used to check the channel is ready.
	HandshakeCode = "pass"
)

// Validator replays notebooks. A Validator holds no per-run state and may
// be reused for several notebooks, one at a time.
type Validator struct {
	// Launcher starts the interpreter for each run.
	Launcher Launcher
	// CellTimeout bounds each cell's execution (DefaultCellTimeout when zero).
	CellTimeout time.Duration
	// StartupTimeout bounds the handshake (DefaultStartupTimeout when zero).
	StartupTimeout time.Duration
	// Progress receives one "." per executed cell. Nil discards them.
	Progress io.Writer
	// Logger receives diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// New returns a Validator with default timeouts.
func New(launcher Launcher) *Validator {
	return &Validator{
		Launcher:       launcher,
		CellTimeout:    DefaultCellTimeout,
		StartupTimeout: DefaultStartupTimeout,
	}
}

// Run executes every code cell of nb, in document order, in a fresh
// interpreter started in dir. Cells that raise are recorded and the run
// continues. Startup failures, timeouts and a dying interpreter abort the
// run; the partial report is returned along with the error.
// The notebook is never modified.
func (v *Validator) Run(ctx context.Context, nb *models.Notebook, dir string) (*Report, error) {
	logger := v.logger().With(zap.String("notebook", nb.Path))

	session, err := v.Launcher.Start(ctx, dir)
	if err != nil {
		return nil, &StartupError{Err: err}
	}
	defer func() {
		if err := session.Stop(); err != nil {
			logger.Debug("kernel shutdown", zap.Error(err))
		}
	}()

	if err := v.handshake(ctx, session); err != nil {
		return nil, err
	}
	logger.Debug("kernel ready", zap.String("dir", dir))

	report := &Report{Notebook: nb.Name(), Path: nb.Path}
	progress := v.Progress
	if progress == nil {
		progress = io.Discard
	}

	for i, cell := range nb.CodeCells() {
		source := cell.Source.String()
		if err := session.Submit(source); err != nil {
			return report, fmt.Errorf("submit cell %d: %w", i, err)
		}
		reply, err := session.AwaitReply(ctx, v.cellTimeout())
		if err != nil {
			return report, fmt.Errorf("cell %d: %w", i, err)
		}
		if reply.Failed() {
			logger.Debug("cell raised", zap.Int("cell", i), zap.String("ename", reply.EName))
			report.Failures = append(report.Failures, Failure{
				Cell:   i,
				Source: source,
				Trace:  reply.Trace(),
			})
		}
		report.Cells++
		fmt.Fprint(progress, ".")
	}

	return report, nil
}

func (v *Validator) handshake(ctx context.Context, session Session) error {
	if err := session.Submit(HandshakeCode); err != nil {
		return &StartupError{Err: err}
	}
	timeout := v.StartupTimeout
	if timeout == 0 {
		timeout = DefaultStartupTimeout
	}
	if _, err := session.AwaitReply(ctx, timeout); err != nil {
		return &StartupError{Err: err}
	}
	return nil
}

func (v *Validator) cellTimeout() time.Duration {
	if v.CellTimeout == 0 {
		return DefaultCellTimeout
	}
	return v.CellTimeout
}

func (v *Validator) logger() *zap.Logger {
	if v.Logger == nil {
		return zap.NewNop()
	}
	return v.Logger
}
