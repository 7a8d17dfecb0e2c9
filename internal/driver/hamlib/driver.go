// Package hamlib implements the frontend.Driver interface for front
// ends whose tuning and gain are actually a radio controlled over
// Hamlib/rigctld, via github.com/xylo04/goHamlib, rather than a
// direct register write (§6, the RF_GAIN/RF_ATTEN status-loop
// commands in §4.7).
package hamlib

import (
	"fmt"
	"strconv"

	hl "github.com/xylo04/goHamlib"

	"github.com/doismellburning/fxradiod/internal/frontend"
)

// Driver controls a rig over Hamlib; it does not itself deliver sample
// bursts (a rig is a tuning/gain backend, not a sample source) and
// expects a separate burst source (e.g. driver/portaudio) to have its
// callback wired in by the caller.
type Driver struct {
	rig   hl.Rig
	model int
	port  string
}

// New returns an unconfigured Driver; call Setup before Start.
func New() *Driver {
	return &Driver{}
}

// Setup opens the rig. Recognized args: "model" (Hamlib numeric rig
// model ID), "port" (serial device or rigctld "host:port").
func (d *Driver) Setup(fe *frontend.Frontend, args map[string]string) error {
	model, err := strconv.Atoi(args["model"])
	if err != nil {
		return fmt.Errorf("hamlib: invalid model %q: %w", args["model"], err)
	}
	d.model = model
	d.port = args["port"]

	d.rig = hl.RigInit(hl.RigModel(d.model))
	d.rig.SetConf("rig_pathname", d.port)

	if err := d.rig.Open(); err != nil {
		return fmt.Errorf("hamlib: open rig: %w", err)
	}

	return nil
}

// Start is a no-op: a rig has no streaming state of its own beyond
// being open.
func (d *Driver) Start(fe *frontend.Frontend) error { return nil }

// Tune programs the rig's VFO frequency and reads it back.
func (d *Driver) Tune(fe *frontend.Frontend, freqHz float64) (float64, error) {
	if err := d.rig.SetFreq(hl.VFOCurrent, freqHz); err != nil {
		return 0, fmt.Errorf("hamlib: set freq: %w", err)
	}

	actual, err := d.rig.GetFreq(hl.VFOCurrent)
	if err != nil {
		return 0, fmt.Errorf("hamlib: get freq: %w", err)
	}

	fe.SetCenterFreq(actual)
	return actual, nil
}

// SetRFGain programs RF gain in response to a status-loop RF_GAIN
// command (§4.7).
func (d *Driver) SetRFGain(db float32) error {
	if err := d.rig.SetLevel(hl.VFOCurrent, hl.LevelRF, float64(db)); err != nil {
		return fmt.Errorf("hamlib: set RF gain: %w", err)
	}
	return nil
}

// SetRFAtten programs RF attenuation in response to a status-loop
// RF_ATTEN command (§4.7).
func (d *Driver) SetRFAtten(db float32) error {
	if err := d.rig.SetLevel(hl.VFOCurrent, hl.LevelATT, float64(db)); err != nil {
		return fmt.Errorf("hamlib: set RF atten: %w", err)
	}
	return nil
}

// Close closes the rig connection.
func (d *Driver) Close() error {
	if err := d.rig.Close(); err != nil {
		return fmt.Errorf("hamlib: close rig: %w", err)
	}
	return nil
}
