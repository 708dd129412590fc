// Package fakekernel is a stand-in interpreter for tests. The test binary
// re-executes itself with EnvVar set and speaks the kernel protocol.
//
// Behaviour in serve mode, by submitted code:
//   - containing "raise": error reply (ValueError: boom)
//   - "sleep": never replies
//   - "cwd": ok reply with the working directory in evalue
//   - "exit": exits with status 2
//   - "stale": an extra reply with a foreign msg_id, then the real one
//   - "spawn": starts a long-lived child sharing the kernel's stderr and
//     replies with its pid in evalue
//   - anything else: ok reply
package fakekernel

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ukaji3/nbclean-go/pkg/nbclean/kernel"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/validator"
)

// EnvVar selects the fake kernel mode.
const EnvVar = "NBCLEAN_FAKE_KERNEL"

// Modes.
const (
	ModeServe  = "serve"
	ModeCrash  = "crash"
	ModeMute   = "mute"
	ModeLinger = "linger" // sleeps without reading input; used for spawned children
)

// CrashMessage is written to stderr in crash mode.
const CrashMessage = "fatal: interpreter unavailable"

// Args are the test binary arguments that skip every test.
var Args = []string{"-test.run=^$"}

// Launcher returns a launcher that runs the current test binary in mode.
func Launcher(mode string) *kernel.ProcessLauncher {
	return &kernel.ProcessLauncher{
		Command:   os.Args[0],
		Args:      Args,
		Env:       []string{EnvVar + "=" + mode},
		StopGrace: 2 * time.Second,
	}
}

// RunIfRequested serves the protocol and exits when EnvVar is set.
// Call it first thing in TestMain.
func RunIfRequested() {
	switch os.Getenv(EnvVar) {
	case "":
		return
	case ModeCrash:
		fmt.Fprintln(os.Stderr, CrashMessage)
		os.Exit(1)
	case ModeLinger:
		time.Sleep(time.Hour)
		os.Exit(0)
	case ModeMute:
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
		}
		os.Exit(0)
	default:
		serve()
		os.Exit(0)
	}
}

func serve() {
	dec := json.NewDecoder(os.Stdin)
	enc := json.NewEncoder(os.Stdout)
	for {
		var req struct {
			MsgID string `json:"msg_id"`
			Code  string `json:"code"`
		}
		if err := dec.Decode(&req); err != nil {
			return
		}

		reply := validator.Reply{MsgID: req.MsgID, Status: validator.StatusOK}
		switch {
		case strings.Contains(req.Code, "raise"):
			reply.Status = validator.StatusError
			reply.EName = "ValueError"
			reply.EValue = "boom"
			reply.Traceback = []string{"Traceback (most recent call last):", "ValueError: boom"}
		case req.Code == "sleep":
			time.Sleep(time.Hour)
		case req.Code == "cwd":
			wd, _ := os.Getwd()
			reply.EValue = wd
		case req.Code == "exit":
			os.Exit(2)
		case req.Code == "stale":
			_ = enc.Encode(validator.Reply{MsgID: "stale", Status: validator.StatusError})
		case req.Code == "spawn":
			pid, err := spawn()
			if err != nil {
				reply.Status = validator.StatusError
				reply.EName = "OSError"
				reply.EValue = err.Error()
				break
			}
			reply.EValue = strconv.Itoa(pid)
		}
		if err := enc.Encode(reply); err != nil {
			return
		}
	}
}

// spawn starts a lingering copy of the test binary that keeps the kernel's
// stderr open.
func spawn() (int, error) {
	cmd := exec.Command(os.Args[0], Args...)
	cmd.Env = append(os.Environ(), EnvVar+"="+ModeLinger)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	return cmd.Process.Pid, nil
}
