package ring

import "golang.org/x/sys/unix"

// nowMonotonicMS reads CLOCK_MONOTONIC in milliseconds, matching spec §3's
// "received_at: monotonic timestamp in milliseconds". Using a raw syscall
// rather than time.Now() keeps sample timestamps immune to wall-clock
// adjustments across a long-lived session, the same reasoning the teacher
// codebase applies when it reaches for golang.org/x/sys/unix directly
// instead of a higher-level wrapper.
func nowMonotonicMS() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return ts.Sec*1000 + ts.Nsec/1_000_000
}
