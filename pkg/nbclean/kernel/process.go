package kernel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/validator"
	"go.uber.org/zap"
)

// DefaultStopGrace is how long Stop waits for a kernel to exit on its own
// before killing it.
const DefaultStopGrace = 5 * time.Second

// ErrKernelExited indicates the kernel process closed its reply channel.
var ErrKernelExited = errors.New("kernel exited")

// ProcessLauncher starts kernels as local subprocesses.
type ProcessLauncher struct {
	// Command is the executable to run.
	Command string
	// Args are passed to Command. When empty the bundled Python driver is used.
	Args []string
	// Env is appended to the current environment.
	Env []string
	// StopGrace bounds a graceful shutdown (DefaultStopGrace when zero).
	StopGrace time.Duration
	// Logger receives diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// NewProcessLauncher returns a launcher for command. With no args the
// bundled driver is passed to the interpreter.
func NewProcessLauncher(command string, args ...string) *ProcessLauncher {
	if command == "" {
		command = DefaultCommand
	}
	return &ProcessLauncher{Command: command, Args: args}
}

// request is one line written to the kernel.
type request struct {
	MsgID string `json:"msg_id"`
	Code  string `json:"code"`
}

// Start launches the kernel in dir.
func (l *ProcessLauncher) Start(ctx context.Context, dir string) (validator.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	args := l.Args
	if len(args) == 0 {
		args = DriverArgs()
	}

	grace := l.StopGrace
	if grace == 0 {
		grace = DefaultStopGrace
	}

	cmd := exec.Command(l.Command, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), l.Env...)
	stderr := newTailBuffer(stderrLimit)
	cmd.Stderr = stderr
	// Children of the kernel may inherit stderr and outlive it.
	cmd.WaitDelay = grace
	setupProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", l.Command, err)
	}

	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("kernel started", zap.String("command", l.Command), zap.Int("pid", cmd.Process.Pid))

	s := &processSession{
		cmd:      cmd,
		stdin:    stdin,
		stderr:   stderr,
		replies:  make(chan *validator.Reply),
		done:     make(chan struct{}),
		stopping: make(chan struct{}),
		grace:    grace,
		logger:   logger,
	}
	go s.readReplies(stdout)
	return s, nil
}

// processSession is a validator.Session backed by a subprocess.
type processSession struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tailBuffer

	replies  chan *validator.Reply
	done     chan struct{}
	stopping chan struct{}
	readErr  error

	pending string
	grace   time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	reaped   bool
	waitOnce sync.Once
	waitErr  error
	stopOnce sync.Once
	stopErr  error
}

// readReplies decodes replies until the kernel closes stdout or the
// session stops.
func (s *processSession) readReplies(r io.Reader) {
	defer close(s.done)
	dec := json.NewDecoder(r)
	for {
		var reply validator.Reply
		if err := dec.Decode(&reply); err != nil {
			s.readErr = err
			return
		}
		select {
		case s.replies <- &reply:
		case <-s.stopping:
			return
		}
	}
}

// Submit writes one request line.
func (s *processSession) Submit(code string) error {
	id := uuid.NewString()
	line, err := json.Marshal(request{MsgID: id, Code: code})
	if err != nil {
		return err
	}
	s.pending = id
	if _, err := s.stdin.Write(append(line, '\n')); err != nil {
		// A dead kernel explains itself better than a broken pipe.
		timer := time.NewTimer(s.grace)
		defer timer.Stop()
		select {
		case <-s.done:
			return s.exitError()
		case <-timer.C:
			return fmt.Errorf("write request: %w", err)
		}
	}
	return nil
}

// AwaitReply returns the reply to the last submission. Replies carrying
// another msg_id are left over from an earlier, abandoned request and are
// dropped.
func (s *processSession) AwaitReply(ctx context.Context, timeout time.Duration) (*validator.Reply, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	for {
		select {
		case reply := <-s.replies:
			if reply.MsgID != s.pending {
				s.logger.Debug("dropping stale reply", zap.String("msg_id", reply.MsgID))
				continue
			}
			return reply, nil
		case <-s.done:
			return nil, s.exitError()
		case <-expired:
			return nil, &validator.ExecutionTimeoutError{Timeout: timeout}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// exitError describes why the reply channel closed. It must only be called
// once readReplies has returned.
func (s *processSession) exitError() error {
	// The kernel is unusable without its reply channel. Reaping it also
	// guarantees its stderr has been fully captured.
	_ = s.reap()

	if s.readErr != nil && !errors.Is(s.readErr, io.EOF) {
		return fmt.Errorf("read reply: %w", s.readErr)
	}
	if tail := strings.TrimSpace(s.stderr.String()); tail != "" {
		return fmt.Errorf("%w: %s", ErrKernelExited, tail)
	}
	return ErrKernelExited
}

// Stop closes the request channel, waits up to the grace period for the
// kernel to exit and kills it otherwise. Processes the kernel spawned are
// killed in either case.
func (s *processSession) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stopping)
		_ = s.stdin.Close()

		var waitErr error
		exited := make(chan struct{})
		go func() {
			defer close(exited)
			<-s.done
			waitErr = s.reap()
		}()

		timer := time.NewTimer(s.grace)
		defer timer.Stop()
		select {
		case <-exited:
		case <-timer.C:
			s.logger.Debug("killing kernel", zap.Int("pid", s.cmd.Process.Pid))
			s.kill()
			<-exited
		}

		// The exit status of a kernel being torn down carries no information,
		// and neither do pipes a killed child left open.
		var exitErr *exec.ExitError
		if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
			s.stopErr = waitErr
		}
	})
	return s.stopErr
}

// kill kills the kernel's process group unless the kernel was already reaped.
func (s *processSession) kill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reaped {
		return
	}
	if err := killProcessGroup(s.cmd); err != nil {
		s.logger.Debug("kill kernel", zap.Error(err))
	}
}

// reap kills whatever is left of the process group and waits for the
// kernel. It must only be called once readReplies has returned, since Wait
// closes the stdout pipe.
func (s *processSession) reap() error {
	s.waitOnce.Do(func() {
		s.kill()
		s.waitErr = s.cmd.Wait()
		s.mu.Lock()
		s.reaped = true
		s.mu.Unlock()
	})
	return s.waitErr
}
