// internal/recstatus/constants.go
package recstatus

// Recorder sub-protocol tags.
// Each tag is a 4-byte ASCII marker embedded somewhere inside a datagram.
const (
	TagRecordStatus   = "RTMS"
	TagDiskTable      = "RTMD"
	TagRecordTimer    = "RTMR"
	TagRecordSettings = "RMSu"
)

// ---- RTMS (record status summary) ----

// Window starts after the 4-byte tag.
const (
	rtmsWindowOffset = 4
	rtmsWindowLen    = 12
	rtmsFieldsLen    = 8 // status(2) pad(2) time-left(4)
)

// ---- RTMD (disk table) ----

// Window starts AT the tag; field offsets are relative to the tag.
const (
	rtmdWindowLen = 32
	rtmdFieldsLen = 26

	rtmdDiskIDStart  = 4
	rtmdElapsedStart = 8
	rtmdWordStart    = 12
	rtmdMarkerStart  = 14
	rtmdNameStart    = 16
	rtmdNameEnd      = 26
)

// DiskDeleteBit is bit 5 of the disk status word.
const DiskDeleteBit = 1 << 5

// ---- RTMR (record timer) ----

const (
	rtmrWindowOffset = 4
	rtmrWindowLen    = 8
	rtmrFieldsLen    = 3 // hours, minutes, seconds
)

// recordingSecondsThreshold drives RecordTimer.Recording.
// Approximation only: the device does not flag recording here.
const recordingSecondsThreshold = 2
