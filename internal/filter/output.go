package filter

import (
	"math"
	"math/cmplx"
	"sync/atomic"

	"github.com/doismellburning/fxradiod/internal/dsp"
)

// FilterOutput is a single channel's per-block slice of the shared
// spectrum: a Kaiser-shaped frequency-domain window, a coarse bin
// shift plus fractional-bin remainder realizing frequency conversion,
// a block-to-block phase rotator for that remainder, and the inverse
// FFT that turns the selected, windowed slice back into OLen
// time-domain samples.
//
// A FilterOutput is owned exclusively by its channel's demodulator
// goroutine once constructed; only Deliver (called by the
// FilterInput's publish path) and the atomic Dropped counter are
// touched from another goroutine.
type FilterOutput struct {
	input *FilterInput
	ifft  *fftPlan

	OLen      int
	Kernel    []complex64 // frequency-domain window, length OLen
	BinShift  int         // integer bin offset into the shared N-bin spectrum
	Remainder float64     // fractional bin residual, in cycles/sample

	blockIdx uint64 // block counter k, feeds the fractional-residual rotator

	blocks  chan []complex64
	Dropped uint64 // blocks this channel's demod thread never drained in time
}

// NewFilterOutput builds a channel's frequency-domain slice/window
// against input, selecting olen contiguous bins and shaping them with
// a Kaiser window whose edges are minIF/sampRate and maxIF/sampRate
// (as fractions of the sample rate - negative values are valid and
// expected for IF bands straddling 0).
func NewFilterOutput(input *FilterInput, olen int, minIF, maxIF, sampRate, beta float64) *FilterOutput {
	kernelReal := dsp.FrequencyKernel(olen, minIF/sampRate, maxIF/sampRate, beta)
	kernel := make([]complex64, olen)
	for i, v := range kernelReal {
		kernel[i] = complex(float32(v), 0)
	}

	fo := &FilterOutput{
		input:  input,
		ifft:   newFFTPlan(olen, true),
		OLen:   olen,
		Kernel: kernel,
		blocks: make(chan []complex64, 2),
	}
	input.Attach(fo)
	return fo
}

// Retune recomputes BinShift and Remainder for a frequency desired
// relative to the front end's center, against the shared spectrum's
// N-point FFT: the integer part becomes the bin shift (wrapped modulo
// N) and the fractional part becomes the cycles/sample remainder
// realized by the per-block rotator.
func (fo *FilterOutput) Retune(desiredHz, sampRate float64) {
	n := fo.input.Params().N()
	binsPerHz := float64(n) / sampRate
	exact := desiredHz * binsPerHz

	shift := int(math.Round(exact))
	fo.BinShift = ((shift % n) + n) % n
	fo.Remainder = (exact - float64(shift)) / float64(n)
	fo.blockIdx = 0
}

// Deliver implements Consumer. It never blocks the forward-FFT
// producer: if the two-block queue is still full of undrained blocks,
// this one is dropped and counted rather than stalling ingest.
func (fo *FilterOutput) Deliver(block []complex64) {
	select {
	case fo.blocks <- block:
	default:
		atomic.AddUint64(&fo.Dropped, 1)
	}
}

// Next suspends the calling demod goroutine until either the next
// frequency-domain block is available or stop fires (in which case ok
// is false and the caller should treat this as the terminate signal
// described in the concurrency model - a poll, not an asynchronous
// cancel). On success it selects this output's bin slice out of the
// shared spectrum, applies the Kaiser kernel and the fractional-
// residual rotator, and runs the inverse FFT, returning OLen
// time-domain samples.
func (fo *FilterOutput) Next(stop <-chan struct{}) ([]complex64, bool) {
	var block []complex64
	select {
	case block = <-fo.blocks:
	case <-stop:
		return nil, false
	}

	n := len(block)
	slice := make([]complex64, fo.OLen)
	for i := 0; i < fo.OLen; i++ {
		bin := (fo.BinShift + i) % n
		slice[i] = block[bin] * fo.Kernel[i]
	}

	phase := 2 * math.Pi * fo.Remainder * float64(fo.OLen) * float64(fo.blockIdx)
	rot := complex64(cmplx.Exp(complex(0, phase)))
	for i := range slice {
		slice[i] *= rot
	}
	fo.blockIdx++

	fo.ifft.Execute(slice)

	scale := complex64(complex(1/float64(fo.OLen), 0))
	for i := range slice {
		slice[i] *= scale
	}

	return slice, true
}

// Close detaches this output from its input and releases its inverse
// FFT plan. Callers must not call Next after Close; the owning demod
// goroutine calls Close only once it has itself decided to stop
// reading, so there is no concurrent Next to race with teardown.
func (fo *FilterOutput) Close() {
	fo.input.Detach(fo)
	fo.ifft.Close()
}
