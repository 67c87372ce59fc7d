// internal/recstatus/types.go
package recstatus

import "fmt"

// RecordingStatus is the RTMS summary.
type RecordingStatus struct {
	Code             uint16
	Label            Label
	RemainingMinutes float64
}

// DiskStatus is one RTMD record.
type DiskStatus struct {
	DiskID         uint32
	ElapsedMinutes float64
	StatusWord     int16
	Base           Label
	Deleted        bool

	// DeleteMarker is the auxiliary word after the status word.
	// Diagnostic only: Deleted is derived from StatusWord.
	DeleteMarker uint16

	VolumeName string
}

// RecordTimer is the RTMR timecode.
type RecordTimer struct {
	Hours   uint8
	Minutes uint8
	Seconds uint8

	// Recording is a heuristic (Seconds > 2), not device truth.
	Recording bool
}

// DecodeError describes one window that could not be decoded.
type DecodeError struct {
	Tag    string
	Index  int // occurrence of Tag within the datagram, 0-based
	Offset int // window start within the datagram
	Reason string
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("recstatus: %s[%d] at offset %d: %s", e.Tag, e.Index, e.Offset, e.Reason)
}

// Report is the result of decoding a single datagram.
// Nil / false members mean the tag was absent or its window failed.
type Report struct {
	// Tags lists the recognised tags in scan order, once per tag.
	Tags []string

	Recording *RecordingStatus

	// DiskTableSeen is true when at least one RTMD tag was found, even if
	// every window failed.
	DiskTableSeen bool
	Disks         []DiskStatus

	Timer *RecordTimer

	// SettingsSeen is true when RMSu was found. The payload is not modelled.
	SettingsSeen bool

	Failures []DecodeError
}

// Empty reports whether no recorder tag was found.
func (r Report) Empty() bool { return len(r.Tags) == 0 }

// Snapshot is a value copy of the decoded state at one point in time.
type Snapshot struct {
	HasRecording bool
	Recording    RecordingStatus

	Disks []DiskStatus

	HasTimer bool
	Timer    RecordTimer

	// Updates counts datagrams that changed at least one field group.
	Updates uint64
}
