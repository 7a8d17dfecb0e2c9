// Package rtsched raises the calling OS thread to a real-time
// scheduling class. cmd/fxradiod calls it from each device's
// supervisor goroutine, which then runs the liveness monitor; the
// ingest path (the driver's own callback thread) and the per-channel
// demodulator goroutines are not raised. Go does not
// expose sched_setscheduler directly, so this calls through
// golang.org/x/sys/unix's raw syscall numbers against the current
// thread, which must first be locked to its OS thread with
// runtime.LockOSThread (threads, not goroutines, carry a scheduling
// class).
package rtsched

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const schedFIFO = 1 // SCHED_FIFO

type schedParam struct {
	priority int32
}

// RaiseFIFO raises the calling thread (which must already be locked
// via runtime.LockOSThread) to SCHED_FIFO at priority. Typical
// priority range is 1-99; callers outside a container with
// CAP_SYS_NICE will get EPERM, which is returned rather than panicked
// on - real-time scheduling is a best-effort optimization, not a
// correctness requirement.
func RaiseFIFO(priority int) error {
	param := schedParam{priority: int32(priority)}
	_, _, errno := unix.Syscall(unix.SYS_SCHED_SETSCHEDULER, 0, uintptr(schedFIFO), uintptr(unsafe.Pointer(&param)))
	if errno != 0 {
		return fmt.Errorf("rtsched: sched_setscheduler: %w", errno)
	}
	return nil
}
