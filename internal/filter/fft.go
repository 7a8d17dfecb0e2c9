// Package filter implements the overlap-save fast-convolution
// channelizer: a single forward FFT on the front end's wideband input
// (FilterInput), broadcast to any number of per-channel bin-selection
// + inverse-FFT consumers (FilterOutput).
package filter

// #cgo pkg-config: fftw3f
// #include <fftw3.h>
// #include <stdlib.h>
import "C"

import (
	"sync"
	"unsafe"
)

// planCreateMu serializes FFTW plan creation/destruction, which
// mutates process-global FFTW state and is documented as not
// thread-safe on its own.
var planCreateMu sync.Mutex

// fftPlan wraps a single fixed-size single-precision complex FFTW3
// transform, forward or inverse, executed in place over a plan-owned
// scratch buffer.
type fftPlan struct {
	n    int
	buf  *C.fftwf_complex
	plan C.fftwf_plan
}

func newFFTPlan(n int, inverse bool) *fftPlan {
	planCreateMu.Lock()
	defer planCreateMu.Unlock()

	buf := (*C.fftwf_complex)(C.fftwf_malloc(C.size_t(n) * C.size_t(unsafe.Sizeof(C.fftwf_complex{}))))

	sign := C.int(-1) // FFTW_FORWARD
	if inverse {
		sign = C.int(1) // FFTW_BACKWARD
	}

	plan := C.fftwf_plan_dft_1d(C.int(n), buf, buf, sign, C.FFTW_ESTIMATE)

	return &fftPlan{n: n, buf: buf, plan: plan}
}

// Execute runs the transform in place over data, which must have
// length n. FFTW's backward transform is unnormalized; callers that
// need a properly scaled inverse FFT apply the 1/n factor themselves
// so it can be folded into other per-sample scaling instead of a
// separate pass over the block.
func (f *fftPlan) Execute(data []complex64) {
	scratch := unsafe.Slice((*complex64)(unsafe.Pointer(f.buf)), f.n)
	copy(scratch, data)
	C.fftwf_execute(f.plan)
	copy(data, scratch)
}

// Close releases the plan and its scratch buffer.
func (f *fftPlan) Close() {
	planCreateMu.Lock()
	defer planCreateMu.Unlock()
	C.fftwf_destroy_plan(f.plan)
	C.fftwf_free(unsafe.Pointer(f.buf))
}
