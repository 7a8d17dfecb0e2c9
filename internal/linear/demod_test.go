package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doismellburning/fxradiod/internal/channel"
)

func newTestDemod(cfg Config) *Demodulator {
	return &Demodulator{
		cfg: cfg,
		ch:  &channel.Channel{},
		agc: NewAGC(AGCConfig{Enabled: false}),
	}
}

func Test_ProcessBlock_Mono_Raw(t *testing.T) {
	d := newTestDemod(Config{})

	block := []complex64{complex(1, 2), complex(-3, 4)}
	left, right, energy := d.processBlock(block, 0, 0)

	require.Len(t, left, 2)
	assert.Nil(t, right)
	assert.InDelta(t, 1, left[0], 1e-6)
	assert.InDelta(t, -3, left[1], 1e-6)
	assert.InDelta(t, 1*1+3*3, energy, 1e-6)
}

func Test_ProcessBlock_Mono_Envelope(t *testing.T) {
	d := newTestDemod(Config{Env: true})

	block := []complex64{complex(3, 4)} // |s| == 5
	left, _, energy := d.processBlock(block, 0, 0)

	assert.InDelta(t, 5, left[0], 1e-5)
	assert.InDelta(t, 25, energy, 1e-5)
}

func Test_ProcessBlock_Stereo_IQPassthrough(t *testing.T) {
	d := newTestDemod(Config{Stereo: true})

	block := []complex64{complex(1, -2)}
	left, right, _ := d.processBlock(block, 0, 0)

	require.Len(t, left, 1)
	require.Len(t, right, 1)
	assert.InDelta(t, 1, left[0], 1e-6)
	assert.InDelta(t, -2, right[0], 1e-6)
}

func Test_ProcessBlock_Stereo_Envelope_SixDBRight(t *testing.T) {
	d := newTestDemod(Config{Stereo: true, Env: true})

	block := []complex64{complex(3, 4)} // |s| == 5
	left, right, _ := d.processBlock(block, 0, 0)

	assert.InDelta(t, 3, left[0], 1e-5)
	assert.InDelta(t, 10, right[0], 1e-5) // |s|*2*g, g == 1
}

func Test_ProcessBlock_ZeroEnergyIsSilence(t *testing.T) {
	d := newTestDemod(Config{})

	block := []complex64{complex(0, 0), complex(0, 0)}
	_, _, energy := d.processBlock(block, 0, 0)

	assert.Equal(t, float64(0), energy)
}

func Test_ProcessBlock_AGC_ReducesGainOverHeadroom(t *testing.T) {
	d := newTestDemod(Config{})
	d.agc = NewAGC(AGCConfig{
		Enabled:    true,
		SampleRate: 8000,
		Headroom:   0.5,
		Threshold:  0.01,
	})

	// Loud block: amplitude well over headroom, gain should shrink.
	block := make([]complex64, 100)
	for i := range block {
		block[i] = complex(1, 0)
	}

	_, _, _ = d.processBlock(block, 0, 0)
	assert.Less(t, d.agc.Gain, 1.0)
}
