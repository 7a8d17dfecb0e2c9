package linear

import (
	"math"
	"math/cmplx"

	"github.com/doismellburning/fxradiod/internal/channel"
	"github.com/doismellburning/fxradiod/internal/dsp"
	"github.com/doismellburning/fxradiod/internal/filter"
)

// Sink receives a demodulated output block. left carries mono samples
// or the left/I channel; right is nil for mono and carries the
// right/Q channel for stereo. marked reports whether the RTP marker
// bit should be set on this block (the first unmuted block following
// one or more muted ones).
type Sink interface {
	WriteBlock(left, right []float32, marked bool)
}

// Config holds one channel's linear-demodulator settings, the subset
// of §4.6 that varies per channel rather than per block.
type Config struct {
	PLL     bool // run the carrier-tracking PLL pass
	Square  bool // Costas-type squaring phase detector
	Env     bool // envelope (AM-style) output instead of raw I/Re
	Stereo  bool // 2-channel output; mono otherwise
	ShiftHz float64

	SampleRate float64 // output sample rate, for the shift oscillator
}

// Demodulator runs the per-block pipeline described in §4.6 against a
// channel's FilterOutput: optional PLL carrier recovery, optional
// post-demod frequency shift, AGC, mono/stereo output shaping, and
// carrier-loss muting.
type Demodulator struct {
	cfg Config
	ch  *channel.Channel
	out *filter.FilterOutput

	pll      *dsp.PLL
	shiftOsc *dsp.Oscillator
	agc      *AGC
}

// NewDemodulator builds a demodulator for ch, reading from out. pllCfg
// is nil when cfg.PLL is false.
func NewDemodulator(cfg Config, ch *channel.Channel, out *filter.FilterOutput, pllCfg *dsp.PLLConfig, agcCfg AGCConfig) *Demodulator {
	d := &Demodulator{cfg: cfg, ch: ch, out: out, agc: NewAGC(agcCfg)}

	if cfg.PLL && pllCfg != nil {
		d.pll = dsp.NewPLL(*pllCfg)
	}
	if cfg.ShiftHz != 0 {
		d.shiftOsc = dsp.NewOscillator(cfg.ShiftHz, cfg.SampleRate)
	}

	return d
}

// Run drives the demodulator's loop: pull blocks from the channel's
// FilterOutput until stop fires or the channel is terminated,
// processing and delivering each one to sink. It returns when
// the loop exits, having released its FilterOutput.
func (d *Demodulator) Run(stop <-chan struct{}, sink Sink, bw, n0 func() float64) {
	defer d.out.Close()

	wasMuted := false

	for {
		if d.ch.Terminate() {
			return
		}

		block, ok := d.out.Next(stop)
		if !ok {
			return
		}

		left, right, energy := d.processBlock(block, bw(), n0())

		muted := energy == 0 || (d.pll != nil && !d.pll.Locked())
		marked := wasMuted && !muted
		wasMuted = muted
		d.ch.Muted.Store(muted)

		if muted {
			for i := range left {
				left[i] = 0
			}
			for i := range right {
				right[i] = 0
			}
		}

		sink.WriteBlock(left, right, marked)
	}
}

// processBlock runs one block through steps 1-4 of §4.6 and returns
// the shaped output plus its total energy (for step 5's muting
// decision). bw is the channel's |max_IF - min_IF| and n0 its current
// noise density estimate, both needed by the AGC's block decision.
func (d *Demodulator) processBlock(block []complex64, bw, n0 float64) (left, right []float32, energy float64) {
	n := len(block)
	samples := make([]complex128, n)
	for i, s := range block {
		samples[i] = complex(float64(real(s)), float64(imag(s)))
	}

	if d.pll != nil {
		var signal, noise float64
		for i, s := range samples {
			corrected, _ := d.pll.Step(s)
			samples[i] = corrected
			signal += real(corrected) * real(corrected)
			noise += imag(corrected) * imag(corrected)
		}
		d.pll.Renormalize()

		snr := 0.0
		switch {
		case noise == 0:
			snr = math.NaN()
		default:
			snr = signal/noise - 1
			if snr < 0 {
				snr = 0
			}
		}

		d.ch.Measurements.SNR = snr
		d.ch.Measurements.FreqOffsetHz = d.pll.FreqHz()
		d.pll.UpdateLock(n, snr)
	}

	if d.shiftOsc != nil {
		for i := range samples {
			samples[i] *= d.shiftOsc.Step()
		}
		d.shiftOsc.Renormalize()
	}

	var bbPower float64
	for _, s := range samples {
		bbPower += cmplx.Abs(s) * cmplx.Abs(s)
	}
	if n > 0 {
		bbPower /= float64(n)
	}
	d.ch.Measurements.BasebandPower = bbPower

	perSampleFactor := d.agc.BlockUpdate(bw, n0, bbPower, n)

	if d.cfg.Stereo {
		left = make([]float32, n)
		right = make([]float32, n)
	} else {
		left = make([]float32, n)
	}

	for i, s := range samples {
		g := d.agc.Gain
		d.agc.Advance(perSampleFactor)

		switch {
		case d.cfg.Stereo && d.cfg.Env:
			left[i] = float32(real(s) * g)
			right[i] = float32(cmplx.Abs(s) * 2 * g)
			energy += float64(left[i])*float64(left[i]) + float64(right[i])*float64(right[i])

		case d.cfg.Stereo:
			left[i] = float32(real(s) * g)
			right[i] = float32(imag(s) * g)
			energy += float64(left[i])*float64(left[i]) + float64(right[i])*float64(right[i])

		case d.cfg.Env:
			left[i] = float32(cmplx.Abs(s) * g)
			energy += float64(left[i]) * float64(left[i])

		default:
			left[i] = float32(real(s) * g)
			energy += float64(left[i]) * float64(left[i])
		}
	}

	return left, right, energy
}
