// internal/config/validate.go
package config

import (
	"fmt"
	"math"

	"github.com/tamzrod/atem-replicator/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	type span struct {
		start  uint32
		end    uint32
		device string
	}

	r := cfg.Replicator

	// ------------------------------------------------------------
	// AMBIENT
	// ------------------------------------------------------------

	switch r.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", r.Logging.Level)
	}
	switch r.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging: unknown format %q", r.Logging.Format)
	}

	if len(r.Devices) == 0 {
		return fmt.Errorf("at least one device required")
	}

	// ------------------------------------------------------------
	// DEVICE SOURCE
	// ------------------------------------------------------------

	seen := make(map[string]bool, len(r.Devices))

	// one protocol per endpoint
	protoOf := make(map[string]string)
	claimProto := func(endpoint, proto string) error {
		switch proto {
		case "", ProtocolModbus:
			proto = ProtocolModbus
		case ProtocolIngest:
		default:
			return fmt.Errorf("endpoint %s: unknown protocol %q", endpoint, proto)
		}
		if prev, ok := protoOf[endpoint]; ok && prev != proto {
			return fmt.Errorf("endpoint %s: used with both %s and %s", endpoint, prev, proto)
		}
		protoOf[endpoint] = proto
		return nil
	}

	if r.StatusMemory.Endpoint != "" {
		if err := claimProto(r.StatusMemory.Endpoint, r.StatusMemory.Protocol); err != nil {
			return fmt.Errorf("status_memory: %w", err)
		}
	}

	for _, d := range r.Devices {
		if d.ID == "" {
			return fmt.Errorf("device id required")
		}
		if seen[d.ID] {
			return fmt.Errorf("device %q: duplicate id", d.ID)
		}
		seen[d.ID] = true

		if d.Source.Host == "" {
			return fmt.Errorf("device %q: source.host required", d.ID)
		}
		if d.Source.Port < 0 || d.Source.Port > math.MaxUint16 {
			return fmt.Errorf("device %q: source.port out of range: %d", d.ID, d.Source.Port)
		}
		if d.Source.StaleAfterMs < 0 {
			return fmt.Errorf("device %q: source.stale_after_ms must be >= 0", d.ID)
		}
		if d.Poll.IntervalMs < 0 {
			return fmt.Errorf("device %q: poll.interval_ms must be > 0", d.ID)
		}
		if d.Poll.MaxBurst < 0 {
			return fmt.Errorf("device %q: poll.max_burst must be >= 0", d.ID)
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(d.Source.DeviceName); i++ {
			if d.Source.DeviceName[i] > 0x7F {
				return fmt.Errorf(
					"device %q: device_name must contain ASCII characters only",
					d.ID,
				)
			}
		}

		for _, t := range d.Targets {
			if t.Endpoint == "" {
				return fmt.Errorf("device %q: target endpoint required", d.ID)
			}
			if t.TimeoutMs < 0 {
				return fmt.Errorf("device %q: target %q: timeout_ms must be >= 0", d.ID, t.Endpoint)
			}
			if err := claimProto(t.Endpoint, t.Protocol); err != nil {
				return fmt.Errorf("device %q: %w", d.ID, err)
			}
		}
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK VALIDATION (OPT-IN)
	// ------------------------------------------------------------

	// key = endpoint | status_unit_id | status_slot
	statusOwner := make(map[string]string)

	claim := func(deviceID, endpoint string, unitID uint8, slot uint16) error {
		key := fmt.Sprintf("%s|%d|%d", endpoint, unitID, slot)
		if prev, exists := statusOwner[key]; exists {
			return fmt.Errorf(
				"status_slot collision: endpoint=%s status_unit_id=%d slot=%d used by devices %q and %q",
				endpoint,
				unitID,
				slot,
				prev,
				deviceID,
			)
		}
		statusOwner[key] = deviceID
		return nil
	}

	for _, d := range r.Devices {
		// status is opt-in
		if d.Source.StatusSlot == nil {
			continue
		}

		slot := *d.Source.StatusSlot
		if (uint32(slot)+1)*status.SlotsPerDevice > math.MaxUint16+1 {
			return fmt.Errorf("device %q: status_slot %d out of range", d.ID, slot)
		}

		sinks := 0

		if r.StatusMemory.Endpoint != "" {
			if err := claim(d.ID, r.StatusMemory.Endpoint, r.StatusMemory.UnitID, slot); err != nil {
				return err
			}
			sinks++
		}

		for _, t := range d.Targets {
			if t.StatusUnitID == nil {
				continue
			}
			if err := claim(d.ID, t.Endpoint, *t.StatusUnitID, slot); err != nil {
				return err
			}
			sinks++
		}

		// status requires somewhere to go
		if sinks == 0 {
			return fmt.Errorf(
				"device %q: status_slot is set but neither status_memory nor any target status_unit_id is defined",
				d.ID,
			)
		}
	}

	// ------------------------------------------------------------
	// RECORDER BLOCK GEOMETRY VALIDATION
	// ------------------------------------------------------------

	// key = endpoint | unit_id
	spans := make(map[string][]span)

	for _, d := range r.Devices {
		for _, t := range d.Targets {
			start := uint32(t.Address)
			end := start + status.RecorderBlockSlots - 1

			if end > math.MaxUint16 {
				return fmt.Errorf(
					"device %q: target %s unit_id=%d address=%d: recorder block exceeds register space",
					d.ID,
					t.Endpoint,
					t.UnitID,
					t.Address,
				)
			}

			key := fmt.Sprintf("%s|%d", t.Endpoint, t.UnitID)

			for _, s := range spans[key] {
				// overlap check (inclusive)
				if !(end < s.start || start > s.end) {
					return fmt.Errorf(
						"memory overlap: endpoint=%s unit_id=%d range=%d-%d overlaps with device=%s range=%d-%d",
						t.Endpoint,
						t.UnitID,
						start,
						end,
						s.device,
						s.start,
						s.end,
					)
				}
			}

			spans[key] = append(spans[key], span{
				start:  start,
				end:    end,
				device: d.ID,
			})
		}
	}

	return nil
}
