// Package config loads the per-device configuration surface described
// in §6: one YAML document, one `device` table per front end. Keys
// the loader doesn't recognize are warnings, not errors - unrecognized
// config entries are non-fatal, the same policy a structured loader
// follows instead of a bespoke keyword scanner.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Device is one entry of the `device` list's recognized keys, each defaulted
// per §6 ("All have safe defaults").
type Device struct {
	Name        string  `yaml:"name"`
	Driver      string  `yaml:"device"`
	Serial      string  `yaml:"serial"`
	SampRate    float64 `yaml:"samprate"`
	Calibrate   float64 `yaml:"calibrate"`
	Frequency   float64 `yaml:"frequency"`
	Description string  `yaml:"description"`
	Status      string  `yaml:"status"`
	TTL         int     `yaml:"ttl"`
	Firmware    string  `yaml:"firmware"`
	QueueDepth  int     `yaml:"queuedepth"`
	ReqSize     int     `yaml:"reqsize"`
	Dither      bool    `yaml:"dither"`
	Rand        bool    `yaml:"rand"`
	Atten       float64 `yaml:"att"`
	Gain        float64 `yaml:"gain"`
	GainMode    string  `yaml:"gainmode"`
	HFAGC       bool    `yaml:"hf-agc"`
	AGCThresh   float64 `yaml:"agc-thresh"`
	HFAtt       bool    `yaml:"hf-att"`
	HFLNA       bool    `yaml:"hf-lna"`
	LibDSP      string  `yaml:"lib-dsp"`
}

func (d *Device) applyDefaults() {
	if d.SampRate == 0 {
		d.SampRate = 12_000_000
	}
	if d.Status == "" {
		d.Status = "239.1.2.3:5006"
	}
	if d.TTL == 0 {
		d.TTL = 1
	}
	if d.QueueDepth == 0 {
		d.QueueDepth = 8
	}
	if d.ReqSize == 0 {
		d.ReqSize = 16384
	}
	if d.AGCThresh == 0 {
		d.AGCThresh = 0.02 // -34 dB, a conservative default noise-over-threshold ratio
	}
}

// Config is a complete configuration document: one or more devices.
type Config struct {
	Devices []Device `yaml:"device"`
}

var knownDeviceKeys = map[string]bool{
	"name": true, "device": true, "serial": true, "samprate": true,
	"calibrate": true, "frequency": true, "description": true,
	"status": true, "ttl": true, "firmware": true, "queuedepth": true,
	"reqsize": true, "dither": true, "rand": true, "att": true,
	"gain": true, "gainmode": true, "hf-agc": true, "agc-thresh": true,
	"hf-att": true, "hf-lna": true, "lib-dsp": true,
}

// Load reads and parses path, applying defaults to every device and
// returning a warning for each unrecognized key instead of failing.
func Load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse is Load's in-memory counterpart, split out for testing
// without touching the filesystem.
func Parse(data []byte) (*Config, []string, error) {
	var raw struct {
		Device []map[string]yaml.Node `yaml:"device"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	var warnings []string
	cfg := &Config{}

	for _, deviceMap := range raw.Device {
		for key := range deviceMap {
			if !knownDeviceKeys[key] {
				warnings = append(warnings, fmt.Sprintf("config: unrecognized key %q in device section", key))
			}
		}

		body, err := yaml.Marshal(deviceMap)
		if err != nil {
			return nil, nil, fmt.Errorf("config: re-marshal device section: %w", err)
		}

		var d Device
		if err := yaml.Unmarshal(body, &d); err != nil {
			return nil, nil, fmt.Errorf("config: decode device section: %w", err)
		}
		d.applyDefaults()

		cfg.Devices = append(cfg.Devices, d)
	}

	return cfg, warnings, nil
}
