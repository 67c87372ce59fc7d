// internal/config/normalize.go
package config

import "github.com/tamzrod/atem-replicator/internal/status"

// Defaults applied by Normalize.
const (
	DefaultPort         = 9910
	DefaultIntervalMs   = 20
	DefaultStaleAfterMs = 3000
	DefaultTimeoutMs    = 1000
	DefaultMaxBurst     = 8
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	r := &cfg.Replicator

	if r.Logging.Level == "" {
		r.Logging.Level = DefaultLogLevel
	}
	if r.Logging.Format == "" {
		r.Logging.Format = DefaultLogFormat
	}

	if r.StatusMemory.Endpoint != "" && r.StatusMemory.Protocol == "" {
		r.StatusMemory.Protocol = ProtocolModbus
	}

	for di := range r.Devices {
		d := &r.Devices[di]

		if d.Source.Port == 0 {
			d.Source.Port = DefaultPort
		}
		if d.Source.StaleAfterMs == 0 {
			d.Source.StaleAfterMs = DefaultStaleAfterMs
		}
		if d.Poll.IntervalMs == 0 {
			d.Poll.IntervalMs = DefaultIntervalMs
		}
		if d.Poll.MaxBurst == 0 {
			d.Poll.MaxBurst = DefaultMaxBurst
		}

		for ti := range d.Targets {
			t := &d.Targets[ti]
			if t.TimeoutMs == 0 {
				t.TimeoutMs = DefaultTimeoutMs
			}
			if t.Protocol == "" {
				t.Protocol = ProtocolModbus
			}
		}

		// ASCII already validated; the name registers hold 16 characters.
		if len(d.Source.DeviceName) > status.DeviceNameMaxChars {
			d.Source.DeviceName = d.Source.DeviceName[:status.DeviceNameMaxChars]
		}
	}
}
