package sandbox

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
)

const memorySampleInterval = 250 * time.Millisecond

// watchMemory samples the child's RSS and calls kill once it exceeds the
// limit. Used when the platform backend cannot enforce an address-space
// rlimit; on strict backends it never runs. Returns when ctx is cancelled
// or the process disappears.
func watchMemory(ctx context.Context, pid int32, limitMB int, kill func(), log zerolog.Logger) {
	limitBytes := uint64(limitMB) * 1024 * 1024

	proc, err := process.NewProcess(pid)
	if err != nil {
		log.Warn().Err(err).Int32("pid", pid).Msg("memory watchdog could not attach")
		return
	}

	ticker := time.NewTicker(memorySampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := proc.MemoryInfo()
			if err != nil {
				// Process exited between samples.
				return
			}
			if info.RSS > limitBytes {
				log.Warn().
					Uint64("rss_bytes", info.RSS).
					Uint64("limit_bytes", limitBytes).
					Msg("memory limit exceeded, killing sandboxed process")
				kill()
				return
			}
		}
	}
}
