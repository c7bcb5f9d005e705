package sandbox

import (
	"os/exec"
	"time"
)

// Limits bound a single sandboxed execution.
type Limits struct {
	Timeout  time.Duration
	MemoryMB int
}

// limitBackend is the platform capability for confining the child process.
// The strict backend applies OS resource limits inside the child before
// user code runs; the degraded backend relies on the parent's wall-clock
// timeout plus the memory watchdog.
type limitBackend interface {
	name() string

	// prelude returns Python source prepended to the harness, applied
	// before any user code executes. Empty when the platform has nothing.
	prelude(l Limits) string

	// configure adjusts the child command before start (process group etc).
	configure(cmd *exec.Cmd)

	// kill terminates the child and everything it spawned.
	kill(cmd *exec.Cmd) error

	// strict reports whether OS-level caps are in force.
	strict() bool
}
