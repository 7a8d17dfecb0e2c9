// Package frontend models the shared upstream device: the single
// wideband sample source all channels downconvert from. It owns the
// forward filter input ring exclusively, tracks tuning/calibration and
// running A/D statistics, and persists the last-tuned frequency to a
// per-device file.
package frontend

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/doismellburning/fxradiod/internal/filter"
)

// TrueFreq compensates for a device's own rounding of a requested
// frequency. The placeholder identity below is a hook, not an
// assumption that the identity is correct for every device; a driver
// that knows its own quirks should replace it in Config.
type TrueFreq func(freqHz float64) float64

func identityTrueFreq(f float64) float64 { return f }

// Config captures a frontend's fixed, rarely-changing attributes -
// the ones set up once at construction rather than updated by ingest.
type Config struct {
	SampleRate    float64
	IsReal        bool // true for a real-sampled (not IQ) front end
	BitsPerSample int

	Calibrate float64 // clock error, ppm-scale (e.g. 1e-6)
	MinIF     float64 // usable IF band, Hz relative to center; may be negative
	MaxIF     float64

	FilterParams filter.Params

	TrueFreq TrueFreq // defaults to identity if nil

	SerialNumber string // used to name the persisted-tuning file
}

// Frontend is the shared, singleton upstream source. Statistical
// fields (Samples, OutputLevel, IFPower, timestamps) are written only
// by the ingest path and read without locking by channels - they are
// held as atomics so those reads are well-defined, not because the
// values need to be authoritative (§5: "statistical, not
// authoritative").
type Frontend struct {
	cfg Config

	In *filter.FilterInput // the forward filter input ring; owned exclusively here

	// Mutable, atomically-updated statistics. float64 fields are
	// stored as their bit pattern via atomic.Uint64 since there is no
	// atomic.Float64 in this Go version.
	samples      atomic.Uint64
	droppedSamps atomic.Uint64
	outputLevel  atomic.Uint64 // bits of a float64: mean-square of the last burst
	ifPower      atomic.Uint64 // bits of a float64
	timestampNs  atomic.Int64  // GPS-epoch nanoseconds of the last burst
	statusEpoch  atomic.Uint64

	centerFreq atomic.Uint64 // bits of a float64: current tuned center frequency
	tuningLock atomic.Bool

	commandCount atomic.Uint64

	// statusReady gates the one-shot "sample rate known" handshake:
	// code that needs to block until the frontend has announced its
	// first status closes this channel exactly once.
	statusReadyOnce sync.Once
	statusReady     chan struct{}
}

// New constructs a Frontend and its owned filter input ring.
func New(cfg Config) *Frontend {
	if cfg.TrueFreq == nil {
		cfg.TrueFreq = identityTrueFreq
	}

	fe := &Frontend{
		cfg:         cfg,
		In:          filter.NewFilterInput(cfg.FilterParams),
		statusReady: make(chan struct{}),
	}
	setFloatBits(&fe.centerFreq, 0)
	return fe
}

func setFloatBits(a *atomic.Uint64, v float64) { a.Store(math.Float64bits(v)) }
func loadFloatBits(a *atomic.Uint64) float64   { return math.Float64frombits(a.Load()) }

// Config returns the frontend's fixed configuration.
func (f *Frontend) Config() Config { return f.cfg }

// RecordBurst updates the running statistics after ingest has copied
// a burst of samples into the filter input ring: sample count,
// dropped-sample count, mean-square output level, and timestamp.
// Called only from the ingest callback path.
func (f *Frontend) RecordBurst(n int, dropped int, meanSquare float64, timestampNs int64) {
	f.samples.Add(uint64(n))
	f.droppedSamps.Add(uint64(dropped))
	setFloatBits(&f.outputLevel, meanSquare)
	f.timestampNs.Store(timestampNs)
	f.statusEpoch.Add(1)

	f.statusReadyOnce.Do(func() { close(f.statusReady) })
}

// WaitStatusReady blocks until the first burst has been recorded (the
// one-shot "sample rate known" handshake), or until stop fires.
func (f *Frontend) WaitStatusReady(stop <-chan struct{}) bool {
	select {
	case <-f.statusReady:
		return true
	case <-stop:
		return false
	}
}

// Samples returns the running input sample counter.
func (f *Frontend) Samples() uint64 { return f.samples.Load() }

// DroppedSamples returns the running dropped-sample counter.
func (f *Frontend) DroppedSamples() uint64 { return f.droppedSamps.Load() }

// OutputLevel returns the mean-square level of the most recent burst.
func (f *Frontend) OutputLevel() float64 { return loadFloatBits(&f.outputLevel) }

// SetIFPower records the running IF power statistic (dBFS or similar;
// units are the driver's choice, only relayed to status).
func (f *Frontend) SetIFPower(v float64) { setFloatBits(&f.ifPower, v) }

// IFPower returns the running IF power statistic.
func (f *Frontend) IFPower() float64 { return loadFloatBits(&f.ifPower) }

// TimestampNs returns the GPS-epoch nanosecond timestamp of the most
// recent burst.
func (f *Frontend) TimestampNs() int64 { return f.timestampNs.Load() }

// StatusEpoch returns the monotonically increasing counter bumped on
// every state change, used by the status loop to know when to emit a
// fresh frame.
func (f *Frontend) StatusEpoch() uint64 { return f.statusEpoch.Load() }

// CenterFreq returns the current tuned center frequency in Hz.
func (f *Frontend) CenterFreq() float64 { return loadFloatBits(&f.centerFreq) }

// SetCenterFreq records a newly tuned center frequency.
func (f *Frontend) SetCenterFreq(hz float64) {
	setFloatBits(&f.centerFreq, hz)
	f.statusEpoch.Add(1)
}

// TuningLocked reports whether frequency changes are currently locked
// out (RADIO_FREQUENCY commands are ignored while this is set).
func (f *Frontend) TuningLocked() bool { return f.tuningLock.Load() }

// SetTuningLocked sets or clears the tuning-lock flag.
func (f *Frontend) SetTuningLocked(locked bool) {
	f.tuningLock.Store(locked)
	f.statusEpoch.Add(1)
}

// IncCommandCount bumps the device command counter, called once per
// dispatched command (§4.7).
func (f *Frontend) IncCommandCount() uint64 {
	f.statusEpoch.Add(1)
	return f.commandCount.Add(1)
}

// CommandCount returns the device command counter.
func (f *Frontend) CommandCount() uint64 { return f.commandCount.Load() }
