// Package portaudio implements the frontend.Driver interface over a
// sound-card-attached ADC (e.g. a SoftRock-style direct-sampling front
// end) via github.com/gordonklaus/portaudio, for front ends whose
// "firmware" is just a stereo line-in.
package portaudio

import (
	"fmt"
	"time"

	pa "github.com/gordonklaus/portaudio"

	"github.com/doismellburning/fxradiod/internal/frontend"
)

// Driver streams real (single-channel) or IQ (stereo, I/Q on L/R)
// samples from a PortAudio input device into a Frontend via its
// Ingest callback.
type Driver struct {
	stream     *pa.Stream
	stereo     bool // stereo input means IQ; mono means real-sampled
	sampleRate float64

	onBurst frontend.BurstCallback
	fe      *frontend.Frontend
}

// New returns an unconfigured Driver; call Setup before Start.
func New() *Driver {
	return &Driver{}
}

// Setup initializes PortAudio and opens (but does not start) the
// configured input device. Recognized args: "device" selects the
// PortAudio host device name (empty uses the default input device),
// "stereo" ("true"/"false") selects IQ vs real sampling.
func (d *Driver) Setup(fe *frontend.Frontend, args map[string]string) error {
	if err := pa.Initialize(); err != nil {
		return fmt.Errorf("portaudio: initialize: %w", err)
	}

	d.fe = fe
	d.sampleRate = fe.Config().SampleRate
	d.stereo = args["stereo"] == "true"

	channels := 1
	if d.stereo {
		channels = 2
	}

	framesPerBuffer := fe.Config().FilterParams.L

	stream, err := pa.OpenDefaultStream(channels, 0, d.sampleRate, framesPerBuffer, d.callback)
	if err != nil {
		pa.Terminate()
		return fmt.Errorf("portaudio: open stream: %w", err)
	}
	d.stream = stream

	return nil
}

// callback is PortAudio's audio thread entry point; it must not
// block. It converts the raw float32 frames into the Sample stream
// Ingest expects and hands them to the registered burst callback.
func (d *Driver) callback(in []float32) {
	if d.onBurst == nil {
		return
	}

	var samples []frontend.Sample
	if d.stereo {
		samples = make([]frontend.Sample, len(in)/2)
		for i := range samples {
			samples[i] = complex(in[2*i], in[2*i+1])
		}
	} else {
		samples = make([]frontend.Sample, len(in))
		for i, v := range in {
			samples[i] = complex(v, 0)
		}
	}

	d.onBurst(samples, 0, time.Now().UnixNano())
}

// SetCallback registers the burst delivery callback, normally
// frontend.Ingest.OnBurst bound to this driver's Frontend.
func (d *Driver) SetCallback(cb frontend.BurstCallback) {
	d.onBurst = cb
}

// Start begins streaming.
func (d *Driver) Start(fe *frontend.Frontend) error {
	if d.onBurst == nil {
		ig := frontend.NewIngest(fe)
		d.SetCallback(ig.OnBurst)
	}
	if err := d.stream.Start(); err != nil {
		return fmt.Errorf("portaudio: start stream: %w", err)
	}
	return nil
}

// Tune is a no-op for a sound-card front end: there is no hardware
// frequency to program, so the requested frequency is simply accepted
// and recorded as the logical center (e.g. a fixed-IF SoftRock clock).
func (d *Driver) Tune(fe *frontend.Frontend, freqHz float64) (float64, error) {
	fe.SetCenterFreq(freqHz)
	return freqHz, nil
}

// Close stops streaming and releases PortAudio.
func (d *Driver) Close() error {
	if d.stream != nil {
		if err := d.stream.Close(); err != nil {
			return fmt.Errorf("portaudio: close stream: %w", err)
		}
	}
	return pa.Terminate()
}
