// Package kernel runs interpreter subprocesses that speak line-delimited
// JSON over their standard streams.
//
// Each request is one line {"msg_id": ..., "code": ...} on the process's
// stdin; each reply is one line on its stdout in the shape of
// validator.Reply. Anything the process writes to stderr is kept only to
// explain a failed start.
//
// Kernels run in their own process group. Stopping one kills everything
// its cells spawned.
package kernel

import (
	_ "embed"
)

// DefaultCommand is the interpreter used when none is configured.
const DefaultCommand = "python3"

//go:embed driver.py
var driverSource string

// DriverArgs returns the arguments that make a Python interpreter run the
// bundled request/reply driver.
func DriverArgs() []string {
	return []string{"-u", "-c", driverSource}
}
