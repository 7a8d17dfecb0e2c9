// Package channel implements the channel table: a set of demodulator
// channels keyed by a 32-bit SSRC, with structural
// mutations (create/free) guarded by a mutex and lookups that are
// cheap and mostly uncontended once a channel exists.
package channel

import (
	"sync/atomic"
)

// BroadcastSSRC is reserved to mean "no channel"/broadcast.
const BroadcastSSRC = 0

// DemodKind tags which per-channel demodulator a Channel runs.
type DemodKind int

const (
	DemodLinear DemodKind = iota
	DemodFM
	DemodWFM
	DemodSpectrum
)

// Tuning holds a channel's frequency-domain parameters.
type Tuning struct {
	FreqHz      float64
	BinShift    int
	DopplerHz   float64
	DopplerRate float64 // Hz/s
}

// Measurements holds the per-block signal measurements a demodulator
// updates.
type Measurements struct {
	BasebandPower float64
	FreqOffsetHz  float64
	SNR           float64
	N0            float64 // noise density
}

// OutputConfig describes how a channel emits audio/data.
type OutputConfig struct {
	SampleRate  float64
	Channels    int // 1 or 2
	DigitalGain float64
	Headroom    float64
	Destination string // network destination, e.g. "239.1.2.3:5004"
	RTPSeq      uint16
	RTPSSRC     uint32
}

// Channel is one live demodulator channel, keyed by SSRC. Lifetime:
// created on first command referencing the SSRC or explicit Setup;
// torn down when Terminate is raised or the lifetime countdown
// expires.
type Channel struct {
	SSRC uint32

	Tuning       Tuning
	Kind         DemodKind
	Measurements Measurements
	Output       OutputConfig

	SquelchOpen  float64
	SquelchClose float64

	// Lifetime is a countdown in seconds, decremented once per second
	// by the reaper; 0 means "no expiry".
	Lifetime atomic.Int64

	// Muted records whether the previous output block was sent as
	// silence; the demodulator sets the RTP marker bit on the next
	// unmuted block following a muted one.
	Muted atomic.Bool

	terminate atomic.Bool
	inUse     atomic.Bool

	// closeHook, if set, is invoked by Free after the terminate flag is
	// raised, standing in for "join all per-channel threads, release
	// network sockets" (§4.5) - the actual demod goroutine and socket
	// lifecycle are owned by package linear/status, not this table.
	closeHook func()
}

// Terminate reports whether the channel has been asked to shut down.
func (c *Channel) Terminate() bool { return c.terminate.Load() }

// RaiseTerminate flags the channel for teardown; a demodulator's
// per-block loop polls Terminate() rather than being asynchronously
// canceled (§5 "Cancellation").
func (c *Channel) RaiseTerminate() { c.terminate.Store(true) }

func newChannel(ssrc uint32) *Channel {
	c := &Channel{SSRC: ssrc}
	c.inUse.Store(true)
	return c
}
