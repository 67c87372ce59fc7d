// internal/writer/types.go
package writer

import (
	"github.com/tamzrod/atem-replicator/internal/poller"
	"github.com/tamzrod/atem-replicator/internal/status"
)

// RegisterClient is the exact contract the writers use.
// *modbus.EndpointClient satisfies it.
type RegisterClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// TargetEndpoint is one recorder block destination.
type TargetEndpoint struct {
	Endpoint string
	UnitID   uint8
	Address  uint16 // first register of the recorder block
}

// StatusSink is one health block destination.
type StatusSink struct {
	Endpoint string
	UnitID   uint8
}

// StatusPlan describes the device health block. Nil in Plan => disabled.
type StatusPlan struct {
	Sinks      []StatusSink
	BaseSlot   uint16
	DeviceName string
}

// Plan is the fully-built write plan for one device.
type Plan struct {
	DeviceID string
	Targets  []TargetEndpoint
	Status   *StatusPlan
}

// Writer writes poll results into targets.
type Writer interface {
	Write(res poller.PollResult) error
}

// StatusWriter is the delivery-only contract for device health.
// It receives a snapshot and writes it verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// Write kinds reported to a WriteHook.
const (
	KindRecorder = "recorder"
	KindStatus   = "status"
)

// WriteHook observes every register write attempt. err is nil on success.
type WriteHook func(kind, endpoint string, err error)
