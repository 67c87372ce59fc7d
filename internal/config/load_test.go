// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
replicator:
  logging:
    level: debug
  metrics:
    listen: ":9100"
  devices:
    - id: atem-1
      source:
        host: 192.168.10.240
        device_name: "HyperDeck-Studio-Extra"
        status_slot: 2
      targets:
        - endpoint: "127.0.0.1:502"
          unit_id: 1
          address: 100
          status_unit_id: 2
`

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replicator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	r := cfg.Replicator
	assert.Equal(t, "debug", r.Logging.Level)
	assert.Equal(t, DefaultLogFormat, r.Logging.Format)
	assert.Equal(t, ":9100", r.Metrics.Listen)

	require.Len(t, r.Devices, 1)
	d := r.Devices[0]
	assert.Equal(t, DefaultPort, d.Source.Port)
	assert.Equal(t, DefaultStaleAfterMs, d.Source.StaleAfterMs)
	assert.Equal(t, DefaultIntervalMs, d.Poll.IntervalMs)
	assert.Equal(t, DefaultMaxBurst, d.Poll.MaxBurst)
	assert.Equal(t, "HyperDeck-Studio", d.Source.DeviceName)

	require.NotNil(t, d.Source.StatusSlot)
	assert.Equal(t, uint16(2), *d.Source.StatusSlot)

	require.Len(t, d.Targets, 1)
	assert.Equal(t, uint16(100), d.Targets[0].Address)
	assert.Equal(t, DefaultTimeoutMs, d.Targets[0].TimeoutMs)
	assert.Equal(t, ProtocolModbus, d.Targets[0].Protocol)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("replicator:\n  units: []\n"))
	require.Error(t, err)
}

func TestParse_RunsValidation(t *testing.T) {
	_, err := Parse([]byte("replicator:\n  devices:\n    - id: a\n"))
	require.ErrorContains(t, err, "source.host required")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
