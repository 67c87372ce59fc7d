// internal/recstatus/state.go
package recstatus

// State holds the last decoded recorder status.
// Last write wins per field group; there is no history.
// Not safe for concurrent use: it belongs to whoever drives the poll loop.
type State struct {
	hasRecording bool
	recording    RecordingStatus

	disks []DiskStatus

	hasTimer bool
	timer    RecordTimer

	updates uint64
}

// Apply merges one datagram's report.
// The disk list is replaced by every datagram that carries an RTMD tag,
// keeping only the windows that decoded.
// Returns true if any field group was written.
func (s *State) Apply(r Report) bool {
	changed := false

	if r.Recording != nil {
		s.recording = *r.Recording
		s.hasRecording = true
		changed = true
	}

	if r.DiskTableSeen {
		s.disks = append(s.disks[:0:0], r.Disks...)
		changed = true
	}

	if r.Timer != nil {
		s.timer = *r.Timer
		s.hasTimer = true
		changed = true
	}

	if changed {
		s.updates++
	}
	return changed
}

// Recording returns the last RTMS summary; ok is false until one decoded.
func (s *State) Recording() (RecordingStatus, bool) {
	return s.recording, s.hasRecording
}

// Disks returns a copy of the current disk table.
func (s *State) Disks() []DiskStatus {
	if len(s.disks) == 0 {
		return nil
	}
	out := make([]DiskStatus, len(s.disks))
	copy(out, s.disks)
	return out
}

// Timer returns the last RTMR timecode; ok is false until one decoded.
func (s *State) Timer() (RecordTimer, bool) {
	return s.timer, s.hasTimer
}

// Snapshot returns a detached copy of the whole state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		HasRecording: s.hasRecording,
		Recording:    s.recording,
		Disks:        s.Disks(),
		HasTimer:     s.hasTimer,
		Timer:        s.timer,
		Updates:      s.updates,
	}
}
