// Package dsp implements the oscillator and phase-locked-loop
// primitives shared by the channelizer and the per-channel
// demodulators: a unit-modulus complex numerically-controlled
// oscillator, a classical second-order PLL with hysteretic lock
// detection, and the Kaiser-window frequency-domain kernel builder
// used by the fast convolver.
package dsp

import "math/cmplx"

// Oscillator is a complex numerically-controlled oscillator: a
// unit-modulus phasor advanced each step by a fixed increment phasor,
// with an optional per-step phase acceleration for Doppler tracking.
// |Phasor| drifts from 1 by a few ULPs per step; Renormalize pulls it
// back to the unit circle, which must be called periodically (the
// linear demodulator does this once per output block).
type Oscillator struct {
	Phasor    complex128 // current unit-modulus phase
	Increment complex128 // per-step phase increment
	Accel     complex128 // per-step increment rotation (Doppler rate), usually 1+0i
}

// NewOscillator returns an oscillator initialized to phase 0 at the
// given frequency (Hz) and sample rate.
func NewOscillator(freqHz, sampleRate float64) *Oscillator {
	o := &Oscillator{Phasor: 1, Accel: 1}
	o.SetFreq(freqHz, sampleRate)
	return o
}

// SetFreq reprograms the oscillator's increment for a new frequency,
// leaving current phase and any configured Doppler rate untouched.
func (o *Oscillator) SetFreq(freqHz, sampleRate float64) {
	o.Increment = cmplx.Exp(complex(0, 2*3.141592653589793*freqHz/sampleRate))
}

// SetDoppler configures a per-step rotation of the increment itself,
// realizing a linear frequency ramp (Doppler rate) in Hz/s at the
// given sample rate. A zero rate leaves Accel at 1 (no ramp).
func (o *Oscillator) SetDoppler(rateHzPerSec, sampleRate float64) {
	if rateHzPerSec == 0 {
		o.Accel = 1
		return
	}
	o.Accel = cmplx.Exp(complex(0, 2*3.141592653589793*rateHzPerSec/(sampleRate*sampleRate)))
}

// Step advances the oscillator by one sample and returns its new
// phasor value.
func (o *Oscillator) Step() complex128 {
	o.Phasor *= o.Increment
	o.Increment *= o.Accel
	return o.Phasor
}

// Renormalize rescales Phasor back to unit modulus. Called
// periodically (e.g. once per output block) to stop floating point
// drift from accumulating; the invariant is |Phasor| = 1 ± ε between
// calls.
func (o *Oscillator) Renormalize() {
	mag := cmplx.Abs(o.Phasor)
	if mag == 0 {
		o.Phasor = 1
		return
	}
	o.Phasor /= complex(mag, 0)
}

// FreqHz reports the oscillator's current instantaneous frequency in
// Hz for the given sample rate, derived from the increment's phase.
func (o *Oscillator) FreqHz(sampleRate float64) float64 {
	return cmplx.Phase(o.Increment) * sampleRate / (2 * 3.141592653589793)
}
