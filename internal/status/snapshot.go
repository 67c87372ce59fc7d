// internal/status/snapshot.go
package status

import "math"

// Snapshot represents exactly what the health writer is allowed to deliver.
// It contains no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

// Observe moves the snapshot to health/errCode.
// Recovery to HealthOK clears the error code and the seconds counter.
// SecondsInError is NOT advanced here; see Tick.
// Returns true if anything changed.
func (s *Snapshot) Observe(health, errCode uint16) bool {
	next := *s
	next.Health = health

	if health == HealthOK {
		next.LastErrorCode = 0
		next.SecondsInError = 0
	} else {
		next.LastErrorCode = errCode
	}

	changed := next != *s
	*s = next
	return changed
}

// Tick advances SecondsInError by one while not OK.
// The counter saturates and never wraps.
func (s *Snapshot) Tick() bool {
	if s.Health == HealthOK || s.SecondsInError == math.MaxUint16 {
		return false
	}
	s.SecondsInError++
	return true
}
