package validator

import (
	"context"
	"strings"
	"time"
)

// Reply statuses reported by an interpreter.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Launcher starts isolated interpreter sessions.
type Launcher interface {
	// Start launches a fresh interpreter whose working directory is dir.
	Start(ctx context.Context, dir string) (Session, error)
}

// Session is the command and reply channel of one running interpreter.
// It is driven in lockstep: one Submit, then one AwaitReply.
type Session interface {
	// Submit sends code for execution.
	Submit(code string) error
	// AwaitReply blocks until the reply to the last submission arrives.
	// A non-positive timeout waits without bound.
	AwaitReply(ctx context.Context, timeout time.Duration) (*Reply, error)
	// Stop tears down the channel and the interpreter. It is safe to call more than once.
	Stop() error
}

// Reply is the structured result of executing one submission.
type Reply struct {
	MsgID     string   `json:"msg_id"`
	Status    string   `json:"status"`
	EName     string   `json:"ename,omitempty"`
	EValue    string   `json:"evalue,omitempty"`
	Traceback []string `json:"traceback,omitempty"`
}

// Failed reports whether the interpreter raised an error.
func (r *Reply) Failed() bool {
	return r.Status == StatusError
}

// Trace returns the error trace as text. When the interpreter sent no
// traceback the error name and value are used instead.
func (r *Reply) Trace() string {
	if len(r.Traceback) > 0 {
		return strings.Join(r.Traceback, "\n")
	}
	if r.EValue == "" {
		return r.EName
	}
	return r.EName + ": " + r.EValue
}
