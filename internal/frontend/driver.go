package frontend

// Sample is one burst element as delivered by a device driver: a
// complex IQ sample for an IQ front end, or, for a real-sampling front
// end, the real sample in the real part with a zero imaginary part.
// Bursts are always complex64; there is no signed 16-bit burst path,
// so a driver that reads raw int16 samples converts them to Sample
// itself before calling the burst callback.
type Sample = complex64

// Driver is the contract a device-specific front end implementation
// must satisfy (§6). Everything below it - USB transfer handling,
// firmware loading, vendor register maps - is out of scope for this
// package and lives in internal/driver/*.
type Driver interface {
	// Setup parses device-specific options (already resolved from the
	// config surface into args) and opens the device, programs sample
	// rate/gains, and initializes metadata. It must not start
	// streaming.
	Setup(fe *Frontend, args map[string]string) error

	// Start begins streaming and launches the driver's own command and
	// monitor threads; sample bursts begin arriving via the callback
	// passed to SetCallback (or registered some other driver-specific
	// way before Start is called).
	Start(fe *Frontend) error

	// Tune requests a new center frequency and returns the frequency
	// actually realized by the device (post calibration compensation).
	Tune(fe *Frontend, freqHz float64) (actualHz float64, err error)

	// Close shuts the device down cleanly.
	Close() error
}

// BurstCallback is the shape of the callback a driver invokes from its
// own thread to deliver a burst of samples. It must be non-blocking
// with bounded work: Ingest.OnBurst satisfies this contract.
type BurstCallback func(samples []Sample, dropped int, timestampNs int64)
