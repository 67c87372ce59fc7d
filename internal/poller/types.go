// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/atem-replicator/internal/recstatus"
)

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	DeviceID string
	At       time.Time

	// Received is the number of datagrams taken in this cycle.
	Received int

	// Available is the input buffer size before any drain.
	Available int

	// Report is the decode report of the last datagram of this cycle.
	// Zero when Received == 0.
	Report recstatus.Report

	// Failures collects the decode failures of every datagram of this cycle.
	Failures []recstatus.DecodeError

	// Snapshot is the accumulated recorder status after this cycle.
	Snapshot recstatus.Snapshot

	// Stale is true when the source is connected but silent for longer
	// than the configured window.
	Stale bool

	Err error // non-nil means the source is not usable
}
