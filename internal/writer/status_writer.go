// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/atem-replicator/internal/status"
)

// deviceStatusWriter is the concrete implementation used by the replicator.
// Each sink keeps its own delivery state.
type deviceStatusWriter struct {
	plan  *StatusPlan
	sinks []*statusSink
	hook  WriteHook
}

type statusSink struct {
	StatusSink
	cli RegisterClient

	needFull bool
	last     status.Snapshot
}

// NewDeviceStatusWriter builds a status writer if status is enabled for the device.
// If plan.Status is nil, status is disabled.
func NewDeviceStatusWriter(plan Plan, clients map[string]RegisterClient, hook WriteHook) (StatusWriter, bool) {
	if plan.Status == nil {
		return nil, false
	}
	if hook == nil {
		hook = func(string, string, error) {}
	}

	sw := &deviceStatusWriter{plan: plan.Status, hook: hook}
	for _, s := range plan.Status.Sinks {
		sw.sinks = append(sw.sinks, &statusSink{
			StatusSink: s,
			cli:        clients[s.Endpoint],
			needFull:   true, // full re-assert on first successful write
			last:       status.Snapshot{Health: status.HealthUnknown},
		})
	}

	return sw, true
}

// WriteStatus delivers a device status snapshot into every sink.
// On any write failure, the next call re-asserts that sink's full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	var errs []string

	for _, sink := range sw.sinks {
		if err := sw.writeSink(sink, s); err != nil {
			errs = append(errs, fmt.Sprintf("ep=%s unit=%d: %v", sink.Endpoint, sink.UnitID, err))
		}
	}

	if len(errs) > 0 {
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}
	return nil
}

func (sw *deviceStatusWriter) writeSink(sink *statusSink, s status.Snapshot) error {
	if sink.cli == nil {
		return fmt.Errorf("missing client for endpoint %s", sink.Endpoint)
	}

	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sink.needFull {
		err := sink.cli.WriteRegisters(sink.UnitID, baseAddr, status.Encode(s, sw.plan.DeviceName))
		sw.hook(KindStatus, sink.Endpoint, err)
		if err != nil {
			return fmt.Errorf("full block write failed: %w", err)
		}

		sink.needFull = false
		sink.last = s
		return nil
	}

	var errs []string

	slot := func(name string, idx uint16, prev *uint16, v uint16) {
		if *prev == v {
			return
		}
		err := sink.cli.WriteRegisters(sink.UnitID, baseAddr+idx, []uint16{v})
		sw.hook(KindStatus, sink.Endpoint, err)
		if err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", idx, name, err))
			return
		}
		*prev = v
	}

	slot("health", status.SlotHealthCode, &sink.last.Health, s.Health)
	slot("last_error", status.SlotLastErrorCode, &sink.last.LastErrorCode, s.LastErrorCode)
	slot("seconds", status.SlotSecondsInError, &sink.last.SecondsInError, s.SecondsInError)

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next call.
		sink.needFull = true
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}
