// Package linear implements the linear (SSB/AM/CW) demodulator: a
// per-block pipeline of optional carrier-tracking PLL, post-demod
// frequency shift, automatic gain control, and mono/stereo output
// shaping, on top of a channel's filter.FilterOutput.
package linear

import "math"

// AGCConfig holds the tunables of the per-block-decision,
// per-sample-smoothed AGC described in §4.6.
type AGCConfig struct {
	Enabled bool

	SampleRate float64

	Headroom         float64 // H: target peak amplitude as a fraction of full scale
	Threshold        float64 // T: noise-over-threshold voltage ratio
	HangTimeSecs     float64
	RecoveryDBPerSec float64 // gain recovery rate once hang has expired
}

// AGC tracks the single scalar gain g applied to a channel's output,
// updated once per block (decision) and once per sample (smoothing),
// matching the original hang-and-recover dynamics.
type AGC struct {
	cfg AGCConfig

	Gain float64 // current gain g

	hangCount int // samples remaining in the current hang interval
}

// NewAGC returns an AGC with unity starting gain.
func NewAGC(cfg AGCConfig) *AGC {
	return &AGC{cfg: cfg, Gain: 1}
}

// BlockUpdate computes the block's target gain g' and the per-sample
// multiplicative factor that smoothly carries Gain from its current
// value to approximately g' over n samples, per the four-way decision
// in §4.6 step 3: over headroom, over noise threshold, hanging, or
// recovering.
//
// bw is the channel's IF bandwidth (|maxIF - minIF|), n0 is the
// channel's current noise density estimate, bbPower is the current
// baseband power estimate, and n is the block length in samples.
func (a *AGC) BlockUpdate(bw, n0, bbPower float64, n int) (perSampleFactor float64) {
	if !a.cfg.Enabled || n <= 0 {
		return 1
	}

	bn := math.Sqrt(bw * n0)
	ampl := math.Sqrt(bbPower)
	h := a.cfg.Headroom
	tt := a.cfg.Threshold

	var target float64
	switch {
	case ampl*a.Gain > h:
		target = h / ampl
		a.hangCount = int(a.cfg.HangTimeSecs * a.cfg.SampleRate)

	case bn*a.Gain > tt*h:
		target = tt * h / bn

	case a.hangCount > 0:
		target = a.Gain // hold

	default:
		// Multiplicative recovery toward higher gain: RecoveryDBPerSec
		// is a dB/s rate, converted to the linear ratio this block's
		// duration (n samples) is worth.
		blockSecs := float64(n) / a.cfg.SampleRate
		recoveryRatio := math.Pow(10, a.cfg.RecoveryDBPerSec*blockSecs/20)
		target = a.Gain * recoveryRatio
	}

	if target <= 0 {
		target = a.Gain
	}

	return math.Pow(target/a.Gain, 1/float64(n))
}

// Advance applies one sample's worth of the per-sample gain-change
// factor computed by BlockUpdate, and decrements the hang counter if
// it is still running. Call this once per sample within the block;
// after n calls Gain will have moved from its block-start value to
// (approximately) the block's target.
func (a *AGC) Advance(perSampleFactor float64) {
	a.Gain *= perSampleFactor
	if a.hangCount > 0 {
		a.hangCount--
	}
}
