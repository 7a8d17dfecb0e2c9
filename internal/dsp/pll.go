package dsp

import (
	"math"
	"math/cmplx"
)

// LockMode selects which hysteretic lock-detector strategy feeds
// PLL.Lock. The squelch_open/squelch_close threshold path is normally
// disabled in favor of the sign-of-SNR path; both are reachable here
// via configuration.
type LockMode int

const (
	// LockModeSNRSign raises/lowers the lock counter based on whether
	// the block's measured SNR is positive or negative. This is the
	// active strategy in current deployments.
	LockModeSNRSign LockMode = iota
	// LockModeSquelchThreshold raises the counter when SNR exceeds
	// OpenThresh and lowers it when SNR falls below CloseThresh,
	// matching the disabled-by-default two-threshold path.
	LockModeSquelchThreshold
)

// PLLConfig holds the fixed parameters of a loop: its natural
// bandwidth, damping factor, and lock-detector tuning.
type PLLConfig struct {
	BandwidthHz float64 // loop noise bandwidth Bn
	Damping     float64 // ζ, zero value defaults to 1/√2 (critical damping)
	Square      bool    // square the downmixed sample before phase detection (Costas-type)

	SampleRate float64

	LockMode     LockMode
	OpenThresh   float64 // SNR above which the lock counter rises (LockModeSquelchThreshold)
	CloseThresh  float64 // SNR below which the lock counter falls (LockModeSquelchThreshold)
	LockTimeSecs float64 // time constant for lock_limit = lock_time * samprate; 0 defaults to 0.05s
}

// PLL is a classical second-order carrier-tracking loop with
// hysteretic lock detection, as described for the linear demodulator's
// optional squaring Costas-type carrier recovery.
type PLL struct {
	cfg PLLConfig

	alpha, beta float64 // loop filter coefficients derived from Bn, ζ

	integrator float64    // accumulated radian frequency offset
	vco        complex128 // unit-modulus VCO phasor

	lockCounter int
	lockLimit   int
	locked      bool

	wasEnabled bool // tracks enabled->just-entered transitions for integrator reset
}

// NewPLL builds a PLL from cfg, deriving loop coefficients and the
// lock-counter clamp from the configured bandwidth, damping, and
// sample rate.
func NewPLL(cfg PLLConfig) *PLL {
	if cfg.Damping == 0 {
		cfg.Damping = 1 / math.Sqrt2
	}
	if cfg.LockTimeSecs == 0 {
		cfg.LockTimeSecs = 0.05
	}

	p := &PLL{cfg: cfg, vco: 1}
	p.setLoopCoefficients()
	p.lockLimit = int(cfg.LockTimeSecs * cfg.SampleRate)
	return p
}

func (p *PLL) setLoopCoefficients() {
	// Standard second-order loop filter design (Gardner): theta is the
	// loop's natural radian sample-rate frequency scaled for the
	// configured damping.
	theta := p.cfg.BandwidthHz / p.cfg.SampleRate / (p.cfg.Damping + 1/(4*p.cfg.Damping))
	denom := 1 + 2*p.cfg.Damping*theta + theta*theta
	p.alpha = (4 * theta * theta) / denom
	p.beta = (4 * p.cfg.Damping * theta) / denom
}

// Reset clears the loop integrator and VCO phase, used when the PLL
// path is freshly (re-)enabled after being off.
func (p *PLL) Reset() {
	p.integrator = 0
	p.vco = 1
}

// errorPhase returns the phase detector's error term for one
// downmixed sample: arg(s), or arg(s²)/2 when squaring is enabled for
// double-sideband/BPSK carrier recovery.
func (p *PLL) errorPhase(s complex128) float64 {
	if p.cfg.Square {
		return cmplx.Phase(s*s) / 2
	}
	return cmplx.Phase(s)
}

// Step advances the loop by one sample given the already-downmixed
// sample s (s·conj(vco) has NOT yet been applied; Step does that and
// returns the corrected sample, which callers use for blockwise SNR
// accumulation, alongside the phase error fed to the loop).
func (p *PLL) Step(s complex128) (corrected complex128, errPhase float64) {
	if !p.wasEnabled {
		p.Reset()
	}
	p.wasEnabled = true

	corrected = s * cmplx.Conj(p.vco)
	errPhase = p.errorPhase(corrected)

	p.integrator += p.alpha * errPhase
	p.vco *= cmplx.Exp(complex(0, p.integrator+p.beta*errPhase))

	return corrected, errPhase
}

// Disable marks the loop as not currently driving a channel, so the
// next Step call resets the integrator/VCO rather than continuing
// from stale state.
func (p *PLL) Disable() {
	p.wasEnabled = false
}

// Renormalize rescales the VCO phasor back to unit modulus; call
// periodically (once per output block) the same as a plain
// Oscillator.
func (p *PLL) Renormalize() {
	mag := cmplx.Abs(p.vco)
	if mag == 0 {
		p.vco = 1
		return
	}
	p.vco /= complex(mag, 0)
}

// Phasor returns the current VCO phasor, halved in phase when
// squaring is enabled so that it represents the actual carrier rather
// than its second harmonic.
func (p *PLL) Phasor() complex128 {
	if p.cfg.Square {
		return cmplx.Exp(complex(0, cmplx.Phase(p.vco)/2))
	}
	return p.vco
}

// FreqHz reports the loop's current tracked frequency offset in Hz.
func (p *PLL) FreqHz() float64 {
	return p.integrator * p.cfg.SampleRate / (2 * math.Pi)
}

// UpdateLock runs the hysteretic lock detector for one block of N
// samples given that block's measured SNR (or squelch-style above/below
// thresholds, depending on LockMode). The counter is incremented by N
// when "good" and decremented by N when "bad", clamped to
// ±lockLimit; the Locked bit only flips at the clamp extremes, which
// gives the detector its hysteresis.
func (p *PLL) UpdateLock(blockLen int, snr float64) {
	var good bool
	switch p.cfg.LockMode {
	case LockModeSquelchThreshold:
		if snr > p.cfg.OpenThresh {
			good = true
		} else if snr < p.cfg.CloseThresh {
			good = false
		} else {
			// Inside the hysteresis band: neither threshold crossed,
			// counter does not move this block.
			return
		}
	default: // LockModeSNRSign
		good = snr > 0
	}

	if good {
		p.lockCounter += blockLen
	} else {
		p.lockCounter -= blockLen
	}

	if p.lockCounter > p.lockLimit {
		p.lockCounter = p.lockLimit
	}
	if p.lockCounter < -p.lockLimit {
		p.lockCounter = -p.lockLimit
	}

	if p.lockCounter >= p.lockLimit {
		p.locked = true
	} else if p.lockCounter <= -p.lockLimit {
		p.locked = false
	}
}

// Locked reports the current hysteretic lock state.
func (p *PLL) Locked() bool { return p.locked }
