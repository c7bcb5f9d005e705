//go:build !unix

package sandbox

import "os/exec"

func newLimitBackend() limitBackend { return watchdogBackend{} }

// watchdogBackend is the degraded path for platforms without rlimits
// (notably Windows): the parent's wall-clock timeout plus the gopsutil
// memory watchdog are the only confinement.
type watchdogBackend struct{}

func (watchdogBackend) name() string { return "watchdog-only" }

func (watchdogBackend) strict() bool { return false }

func (watchdogBackend) prelude(Limits) string { return "" }

func (watchdogBackend) configure(*exec.Cmd) {}

func (watchdogBackend) kill(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
