package frontend

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/doismellburning/fxradiod/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		SampleRate:    48000,
		FilterParams:  filter.Params{L: 64, M: 17},
		SerialNumber:  fmt.Sprintf("test-%d", rand.Int63()),
	}
}

func Test_Tune_AppliesCalibrationRatio(t *testing.T) {
	fe := New(Config{
		SampleRate:   48000,
		Calibrate:    1e-6,
		FilterParams: filter.Params{L: 64, M: 17},
	})

	var programmedIntFreq float64
	actual, err := fe.Tune(10_000_000, func(intFreqHz float64) (float64, error) {
		programmedIntFreq = intFreqHz
		return intFreqHz, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 9_999_990.0, programmedIntFreq)
	assert.InDelta(t, programmedIntFreq*1.000001, actual, 1e-6)
	assert.Equal(t, actual, fe.CenterFreq())
}

func Test_TuningFile_RoundTrip(t *testing.T) {
	cfg := testConfig()
	fe := New(cfg)

	_, err := fe.Tune(7_040_000, func(f float64) (float64, error) { return f, nil })
	require.NoError(t, err)

	got := ReadTuningFile(cfg.SerialNumber)
	assert.InDelta(t, fe.CenterFreq(), got, 1e-6)
}

func Test_ReadTuningFile_FallsBackWhenMissing(t *testing.T) {
	got := ReadTuningFile(fmt.Sprintf("never-written-%d", rand.Int63()))
	assert.Equal(t, FallbackFreqHz, got)
}

func Test_UnmaskRandomizer(t *testing.T) {
	// LSB clear: unchanged.
	assert.Equal(t, int16(0x1234), UnmaskRandomizer(0x1234))

	// LSB set: all other bits flip.
	in := int16(0x1235) // ...0001 0010 0011 0101, LSB set
	out := UnmaskRandomizer(in)
	assert.Equal(t, int16(1), out&1, "LSB must be preserved")
	assert.Equal(t, ^in&^int16(1), out&^int16(1))
}

func Test_Ingest_RecordsStatsAndPublishesOncePerL(t *testing.T) {
	fe := New(testConfig())
	ig := NewIngest(fe)

	var blocks int
	fe.In.Attach(consumerFunc(func(_ []complex64) { blocks++ }))

	burst := make([]complex64, 64)
	for i := range burst {
		burst[i] = complex(1, 0)
	}
	ig.OnBurst(burst, 3, 1234)

	assert.Equal(t, 1, blocks)
	assert.Equal(t, uint64(64), fe.Samples())
	assert.Equal(t, uint64(3), fe.DroppedSamples())
	assert.InDelta(t, 1.0, fe.OutputLevel(), 1e-9)
	assert.Equal(t, int64(1234), fe.TimestampNs())
}

type consumerFunc func(block []complex64)

func (f consumerFunc) Deliver(block []complex64) { f(block) }
