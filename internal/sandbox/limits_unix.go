//go:build unix

package sandbox

import (
	"fmt"
	"os/exec"
	"syscall"
)

func newLimitBackend() limitBackend { return posixBackend{} }

// posixBackend confines the child with rlimits set by a Python prelude
// inside the child itself, plus a dedicated process group so a kill reaches
// grandchildren too.
type posixBackend struct{}

func (posixBackend) name() string { return "posix-rlimits" }

func (posixBackend) strict() bool { return true }

func (posixBackend) prelude(l Limits) string {
	memBytes := int64(l.MemoryMB) * 1024 * 1024
	cpuSeconds := int(l.Timeout.Seconds())
	if cpuSeconds < 1 {
		cpuSeconds = 1
	}
	// Wrapped in try/except: some systems reject individual rlimits and the
	// parent-side timeout still holds either way.
	return fmt.Sprintf(`import resource
try:
    resource.setrlimit(resource.RLIMIT_AS, (%d, %d))
    resource.setrlimit(resource.RLIMIT_CPU, (%d, %d))
    resource.setrlimit(resource.RLIMIT_CORE, (0, 0))
    resource.setrlimit(resource.RLIMIT_NPROC, (10, 10))
except (ValueError, OSError):
    pass
`, memBytes, memBytes, cpuSeconds, cpuSeconds)
}

func (posixBackend) configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func (posixBackend) kill(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	// Negative pid targets the whole process group.
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
