// internal/status/constants.go
package status

// Register block layout constants.
// These values define the replicated memory map and MUST NOT be configurable.

// ============================================================
// DEVICE HEALTH BLOCK
// ============================================================

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the link health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the link has not been OK.
const SlotSecondsInError = 2

// ---- RESERVED RANGE ----

// Slots 3-10 are reserved for future use.
const SlotReservedStart = 3
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the health block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

const (
	HealthUnknown  uint16 = 0 // boot, nothing received yet
	HealthOK       uint16 = 1
	HealthError    uint16 = 2 // not connected
	HealthStale    uint16 = 3 // connected, no datagram within stale window
	HealthDisabled uint16 = 4
)

// ============================================================
// RECORDER BLOCK
// ============================================================

// Header slots.
const (
	SlotMediaCode        = 0 // raw RTMS status code
	SlotMediaKnown       = 1 // 1 when the code is in the media table
	SlotRemainingMinutes = 2 // whole minutes, saturates at 65535
	SlotTimerHours       = 3
	SlotTimerMinutes     = 4
	SlotTimerSeconds     = 5
	SlotRecording        = 6 // timer heuristic, 0/1
	SlotDiskCount        = 7 // rows actually filled, <= MaxDisks
	SlotValidFlags       = 8 // see Valid* bits
	SlotUpdateCounter    = 9 // low 16 bits of decode updates
)

// RecorderHeaderSlots is the size of the header.
const RecorderHeaderSlots = 10

// Valid* bits in SlotValidFlags.
const (
	ValidRecording uint16 = 1 << 0
	ValidTimer     uint16 = 1 << 1
	ValidDisks     uint16 = 1 << 2
)

// MaxDisks is the number of disk rows carried. Extra disks are dropped.
const MaxDisks = 4

// Disk row slots, relative to the row start.
const (
	DiskSlotIDHigh         = 0
	DiskSlotIDLow          = 1
	DiskSlotStatusWord     = 2 // raw status word, two's complement
	DiskSlotBaseKnown      = 3
	DiskSlotDeleted        = 4
	DiskSlotElapsedMinutes = 5 // whole minutes, saturates at 65535
)

// DiskRowSlots is the size of one disk row.
const DiskRowSlots = 6

// RecorderBlockSlots is the full recorder block size.
const RecorderBlockSlots = RecorderHeaderSlots + MaxDisks*DiskRowSlots
