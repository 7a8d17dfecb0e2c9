package rtsched

import (
	"runtime"
	"testing"
)

// Real-time scheduling requires CAP_SYS_NICE, which the test
// environment may not have; this only exercises that the call
// completes without panicking and surfaces a permission error rather
// than crashing the process.
func Test_RaiseFIFO_DoesNotPanic(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	_ = RaiseFIFO(1) // error (e.g. EPERM) is expected and acceptable outside CAP_SYS_NICE
}
