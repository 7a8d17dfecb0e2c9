package filter

import "sync"

// Params describes the overlap-save relationship between an input
// block length L and a filter impulse response length M: the forward
// FFT size N = L + M - 1.
type Params struct {
	L int // input block length, in samples
	M int // filter impulse response length
}

// N returns the forward FFT size implied by L and M.
func (p Params) N() int { return p.L + p.M - 1 }

// DeriveM returns the impulse response length implied by an input
// block length L and a configured overlap factor (must be > 1):
// M = L/(overlap-1) + 1.
func DeriveM(l int, overlap int) int {
	return l/(overlap-1) + 1
}

// Consumer receives forward-FFT blocks published by a FilterInput.
// Deliver is called synchronously from the ingest path and must never
// block: implementations that need to hand the block to a slower
// consumer (as FilterOutput does) enqueue it and drop it if the
// consumer hasn't kept up.
type Consumer interface {
	Deliver(block []complex64)
}

// FilterInput is the forward half of the overlap-save fast convolver:
// a time-domain ring sized to hold the current block plus the M-1
// samples of overlap, advanced one L-sample block at a time. Every L
// new samples written triggers exactly one forward FFT, and the
// resulting frequency-domain block is published to every attached
// consumer before the next block is computed - consumers see a
// totally ordered, exactly-once sequence of blocks.
type FilterInput struct {
	params Params
	fft    *fftPlan

	mu        sync.Mutex
	ring      []complex64 // length N; always holds the most recent N samples written
	pending   int         // samples written since the last published block, 0..L
	consumers []Consumer
}

// NewFilterInput allocates a FilterInput for the given block
// parameters.
func NewFilterInput(params Params) *FilterInput {
	n := params.N()
	return &FilterInput{
		params: params,
		fft:    newFFTPlan(n, false),
		ring:   make([]complex64, n),
	}
}

// Params returns the block parameters this input was constructed
// with.
func (fi *FilterInput) Params() Params { return fi.params }

// Attach registers c to receive every future published block. Attach
// must not race with Write; callers attach all channels before
// streaming begins, or otherwise serialize attachment with ingest.
func (fi *FilterInput) Attach(c Consumer) {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	fi.consumers = append(fi.consumers, c)
}

// Detach removes a previously attached consumer, used when a channel
// is torn down.
func (fi *FilterInput) Detach(c Consumer) {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	for i, existing := range fi.consumers {
		if existing == c {
			fi.consumers = append(fi.consumers[:i], fi.consumers[i+1:]...)
			return
		}
	}
}

// Write appends samples to the ring, sliding out the oldest ones as
// needed, and runs+publishes a forward FFT block every time L new
// samples have accumulated since the last one. samples may span any
// number of L-sized blocks; Write loops internally so ingest can hand
// it bursts of arbitrary size and still get exactly one FFT per L
// samples.
func (fi *FilterInput) Write(samples []complex64) {
	n := fi.params.N()
	l := fi.params.L

	for len(samples) > 0 {
		take := l - fi.pending
		if take > len(samples) {
			take = len(samples)
		}

		copy(fi.ring, fi.ring[take:])
		copy(fi.ring[n-take:], samples[:take])

		fi.pending += take
		samples = samples[take:]

		if fi.pending == l {
			fi.publish()
			fi.pending = 0
		}
	}
}

func (fi *FilterInput) publish() {
	block := make([]complex64, len(fi.ring))
	copy(block, fi.ring)
	fi.fft.Execute(block)

	fi.mu.Lock()
	consumers := fi.consumers
	fi.mu.Unlock()

	for _, c := range consumers {
		c.Deliver(block)
	}
}

// Close releases the forward FFT plan. Callers must detach all
// consumers first.
func (fi *FilterInput) Close() {
	fi.fft.Close()
}
