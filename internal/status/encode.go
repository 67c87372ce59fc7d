// internal/status/encode.go
package status

import (
	"math"

	"github.com/tamzrod/atem-replicator/internal/recstatus"
)

// Encode converts a health Snapshot into a full health block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot, deviceName string) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError

	// Slots 3..(device name start - 1) are RESERVED -> left as zero

	copy(regs[SlotDeviceNameStart:SlotDeviceNameEnd+1], EncodeDeviceName(deviceName))

	return regs
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		out[i/2] = uint16(printable(b, i))<<8 | uint16(printable(b, i+1))
	}
	return out
}

// printable returns b[i] sanitized to printable ASCII, or 0 past the end.
func printable(b []byte, i int) byte {
	if i >= len(b) {
		return 0
	}
	if b[i] < 0x20 || b[i] > 0x7E {
		return '?'
	}
	return b[i]
}

// EncodeRecorder converts decoded recorder status into a recorder block.
// Groups that were never decoded stay zero and have their Valid* bit clear.
func EncodeRecorder(s recstatus.Snapshot) []uint16 {
	regs := make([]uint16, RecorderBlockSlots)

	var valid uint16

	if s.HasRecording {
		valid |= ValidRecording
		regs[SlotMediaCode] = s.Recording.Code
		regs[SlotMediaKnown] = boolReg(s.Recording.Label.Known)
		regs[SlotRemainingMinutes] = minutesReg(s.Recording.RemainingMinutes)
	}

	if s.HasTimer {
		valid |= ValidTimer
		regs[SlotTimerHours] = uint16(s.Timer.Hours)
		regs[SlotTimerMinutes] = uint16(s.Timer.Minutes)
		regs[SlotTimerSeconds] = uint16(s.Timer.Seconds)
		regs[SlotRecording] = boolReg(s.Timer.Recording)
	}

	if len(s.Disks) > 0 {
		valid |= ValidDisks
	}

	n := min(len(s.Disks), MaxDisks)
	regs[SlotDiskCount] = uint16(n)

	for i := 0; i < n; i++ {
		d := s.Disks[i]
		row := regs[RecorderHeaderSlots+i*DiskRowSlots:]

		row[DiskSlotIDHigh] = uint16(d.DiskID >> 16)
		row[DiskSlotIDLow] = uint16(d.DiskID)
		row[DiskSlotStatusWord] = uint16(d.StatusWord)
		row[DiskSlotBaseKnown] = boolReg(d.Base.Known)
		row[DiskSlotDeleted] = boolReg(d.Deleted)
		row[DiskSlotElapsedMinutes] = minutesReg(d.ElapsedMinutes)
	}

	regs[SlotValidFlags] = valid
	regs[SlotUpdateCounter] = uint16(s.Updates)

	return regs
}

func boolReg(v bool) uint16 {
	if v {
		return 1
	}
	return 0
}

// minutesReg truncates to whole minutes and saturates at the register width.
func minutesReg(m float64) uint16 {
	if m <= 0 {
		return 0
	}
	if m >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(m)
}
