package dsp

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Oscillator_StepTracksConfiguredFrequency(t *testing.T) {
	const sampleRate = 48000.0
	const freq = 1000.0

	o := NewOscillator(freq, sampleRate)
	assert.InDelta(t, freq, o.FreqHz(sampleRate), 1e-6)

	// After one step the phase should have advanced by 2*pi*freq/sampleRate.
	o.Step()
	want := cmplx.Exp(complex(0, 2*math.Pi*freq/sampleRate))
	assert.InDelta(t, real(want), real(o.Phasor), 1e-9)
	assert.InDelta(t, imag(want), imag(o.Phasor), 1e-9)
}

func Test_Oscillator_RenormalizeRestoresUnitModulus(t *testing.T) {
	o := NewOscillator(100, 8000)
	o.Phasor *= 1.2 // simulate drift
	o.Renormalize()
	assert.InDelta(t, 1.0, cmplx.Abs(o.Phasor), 1e-12)
}

func Test_PLL_LocksOntoPureToneWithinLockTime(t *testing.T) {
	const sampleRate = 48000.0
	const blockLen = 480 // 10ms blocks
	const offsetHz = 100.0

	pll := NewPLL(PLLConfig{
		BandwidthHz:  50,
		SampleRate:   sampleRate,
		LockTimeSecs: 0.05,
	})

	tone := NewOscillator(offsetHz, sampleRate)

	const totalSamples = int(sampleRate * 0.5) // 0.5s
	for n := 0; n < totalSamples; n += blockLen {
		var signal, noise float64
		for i := 0; i < blockLen; i++ {
			s := tone.Step()
			corrected, _ := pll.Step(s)
			signal += real(corrected) * real(corrected)
			noise += imag(corrected) * imag(corrected)
		}
		snr := 0.0
		if noise > 0 {
			snr = signal/noise - 1
		}
		pll.UpdateLock(blockLen, snr)
		pll.Renormalize()
	}

	assert.True(t, pll.Locked(), "PLL should be locked after 0.5s on a clean tone")
	assert.InDelta(t, offsetHz, pll.FreqHz(), 5, "tracked frequency should converge near the tone offset")
}

func Test_PLL_Hysteresis_DoesNotToggleWithinOneBlock(t *testing.T) {
	pll := NewPLL(PLLConfig{BandwidthHz: 50, SampleRate: 48000, LockTimeSecs: 0.05})
	pll.lockCounter = pll.lockLimit
	pll.locked = true

	// A single alternating-sign block shouldn't be enough to flip lock;
	// the clamp only flips state at the extremes, and lockLimit requires
	// lock_time seconds worth of consistent sign to traverse.
	pll.UpdateLock(1, -0.01)
	assert.True(t, pll.Locked(), "one negative block should not immediately unlock")

	// Sustained negative SNR for lock_time worth of samples must unlock.
	limit := pll.lockLimit
	for pll.lockCounter > -limit {
		pll.UpdateLock(1, -0.01)
	}
	assert.False(t, pll.Locked())
}

func Test_PLL_SquelchThresholdMode(t *testing.T) {
	pll := NewPLL(PLLConfig{
		BandwidthHz:  50,
		SampleRate:   48000,
		LockTimeSecs: 0.01,
		LockMode:     LockModeSquelchThreshold,
		OpenThresh:   10,
		CloseThresh:  3,
	})

	limit := pll.lockLimit
	for i := 0; i < limit; i++ {
		pll.UpdateLock(1, 12) // above open threshold
	}
	assert.True(t, pll.Locked())

	// From +limit the counter must travel all the way to -limit before
	// the lock bit flips.
	for i := 0; i < 2*limit; i++ {
		pll.UpdateLock(1, 1) // below close threshold
	}
	assert.False(t, pll.Locked())
}

func Test_KaiserWindow_PeaksAtCenterAndIsSymmetric(t *testing.T) {
	w := KaiserWindow(65, 8)
	require.Len(t, w, 65)
	assert.InDelta(t, 1.0, w[32], 1e-9, "center tap of an odd-length Kaiser window is always 1")
	for i := 0; i < 32; i++ {
		assert.InDelta(t, w[i], w[64-i], 1e-9)
	}
}

func Test_FrequencyKernel_PassesSelectedBand(t *testing.T) {
	const n = 256
	kernel := FrequencyKernel(n, 0.1, 0.2, 5)

	// Deep interior of the passband should be near unity gain, not just
	// nonzero - a bin on the transition skirt would also pass a bare
	// >0 check without the filter actually doing its job.
	mid := int(0.15 * n)
	assert.InDelta(t, 1.0, kernel[mid], 0.05)

	// ...while a bin well outside the band should be exactly zero.
	assert.Equal(t, 0.0, kernel[n/2])
}

func Test_FrequencyKernel_PassbandNearBinZeroStaysUnity(t *testing.T) {
	const n = 256
	// A band straddling 0, as a tuned channel's passband does once its
	// desired frequency has been placed at slice DC.
	kernel := FrequencyKernel(n, -0.05, 0.05, 8)

	assert.InDelta(t, 1.0, kernel[0], 0.05, "bin 0 sits at the tuned frequency and must pass near unity gain")
	assert.InDelta(t, 1.0, kernel[n-1], 0.05, "bin n-1 is adjacent to DC on the wrapped side of the band")
}
