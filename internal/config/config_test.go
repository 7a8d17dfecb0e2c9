package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_AppliesDefaults(t *testing.T) {
	doc := []byte(`
device:
  - name: rx888-1
    device: rx888
    serial: "12345"
    frequency: 7040000
`)
	cfg, warnings, err := Parse(doc)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, cfg.Devices, 1)

	d := cfg.Devices[0]
	assert.Equal(t, "rx888-1", d.Name)
	assert.Equal(t, "12345", d.Serial)
	assert.Equal(t, 7_040_000.0, d.Frequency)
	assert.Equal(t, 12_000_000.0, d.SampRate)
	assert.Equal(t, "239.1.2.3:5006", d.Status)
	assert.Equal(t, 1, d.TTL)
	assert.Equal(t, 8, d.QueueDepth)
}

func Test_Parse_WarnsOnUnrecognizedKey(t *testing.T) {
	doc := []byte(`
device:
  - name: rx888-1
    device: rx888
    bogus-key: 1
`)
	_, warnings, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "bogus-key")
}

func Test_Parse_MultipleDevices(t *testing.T) {
	doc := []byte(`
device:
  - name: a
    samprate: 2000000
  - name: b
    samprate: 4000000
`)
	cfg, _, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, cfg.Devices, 2)
	assert.Equal(t, 2_000_000.0, cfg.Devices[0].SampRate)
	assert.Equal(t, 4_000_000.0, cfg.Devices[1].SampRate)
}

func Test_Load_MissingFile_ReturnsError(t *testing.T) {
	_, _, err := Load("/nonexistent/path/to/config.yaml")
	assert.Error(t, err)
}
