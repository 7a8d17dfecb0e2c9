package frontend

// Ingest drives the bridge between a device driver's callback thread
// and the shared Frontend: it copies each burst into the filter input
// ring, updates running A/D statistics, and (via FilterInput.Write)
// triggers the forward FFT once enough samples have accumulated. One
// Ingest exists per Frontend.
type Ingest struct {
	fe *Frontend
}

// NewIngest binds an Ingest to its Frontend.
func NewIngest(fe *Frontend) *Ingest {
	return &Ingest{fe: fe}
}

// OnBurst is the BurstCallback handed to a Driver. It is invoked on
// the driver's own thread/goroutine and must stay non-blocking and
// bounded: it copies samples into the ring (which publishes one
// forward FFT block per L samples accumulated, so a long burst may
// publish several), then updates the running statistics.
func (ig *Ingest) OnBurst(samples []Sample, dropped int, timestampNs int64) {
	ig.fe.In.Write(samples)

	var sumSquares float64
	for _, s := range samples {
		re, im := float64(real(s)), float64(imag(s))
		sumSquares += re*re + im*im
	}

	meanSquare := 0.0
	if len(samples) > 0 {
		meanSquare = sumSquares / float64(len(samples))
	}

	ig.fe.RecordBurst(len(samples), dropped, meanSquare, timestampNs)
}

// UnmaskRandomizer reverses a real-sampling front end's XOR
// randomizer: when the LSB of a raw sample is set, all other bits are
// flipped. Real-sampled drivers call this on each raw int16 before
// promoting it into the ingest pipeline.
func UnmaskRandomizer(raw int16) int16 {
	if raw&1 != 0 {
		return raw ^ ^int16(1)
	}
	return raw
}
