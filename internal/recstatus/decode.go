// internal/recstatus/decode.go
package recstatus

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Decode scans one datagram for every recorder tag.
// All scans run unconditionally and independently; each computes its own
// window offset from its own tag position. Decode never fails: malformed
// windows are reported in Report.Failures and skipped.
func Decode(datagram []byte) Report {
	var rep Report

	decodeRecordStatus(datagram, &rep)
	decodeDiskTable(datagram, &rep)
	decodeRecordTimer(datagram, &rep)
	decodeRecordSettings(datagram, &rep)

	return rep
}

// ---- RTMS ----

func decodeRecordStatus(data []byte, rep *Report) {
	idx := bytes.Index(data, []byte(TagRecordStatus))
	if idx < 0 {
		return
	}
	rep.Tags = append(rep.Tags, TagRecordStatus)

	off := idx + rtmsWindowOffset
	w := window(data, off, rtmsWindowLen)
	if len(w) < rtmsFieldsLen {
		rep.fail(TagRecordStatus, 0, off, shortWindow(len(w), rtmsFieldsLen))
		return
	}

	code := binary.BigEndian.Uint16(w[0:2])
	left := binary.BigEndian.Uint32(w[4:8])

	rep.Recording = &RecordingStatus{
		Code:             code,
		Label:            MediaStatus(code),
		RemainingMinutes: float64(left) / 60,
	}
}

// ---- RTMD ----

func decodeDiskTable(data []byte, rep *Report) {
	tag := []byte(TagDiskTable)

	n := 0
	for from := 0; from < len(data); n++ {
		i := bytes.Index(data[from:], tag)
		if i < 0 {
			break
		}
		off := from + i
		from = off + 1

		if n == 0 {
			rep.Tags = append(rep.Tags, TagDiskTable)
			rep.DiskTableSeen = true
		}

		d, err := decodeDisk(window(data, off, rtmdWindowLen))
		if err != nil {
			rep.fail(TagDiskTable, n, off, err.Error())
			continue
		}
		rep.Disks = append(rep.Disks, d)
	}
}

// decodeDisk decodes one RTMD window (tag included).
func decodeDisk(w []byte) (DiskStatus, error) {
	if len(w) < rtmdFieldsLen {
		return DiskStatus{}, errors.New(shortWindow(len(w), rtmdFieldsLen))
	}

	name := w[rtmdNameStart:rtmdNameEnd]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	name = bytes.TrimRight(name, " ")
	if !utf8.Valid(name) {
		return DiskStatus{}, fmt.Errorf("volume name is not valid UTF-8: % x", name)
	}

	word := int16(binary.BigEndian.Uint16(w[rtmdWordStart:rtmdMarkerStart]))
	base := word &^ DiskDeleteBit

	return DiskStatus{
		DiskID:         binary.BigEndian.Uint32(w[rtmdDiskIDStart:rtmdElapsedStart]),
		ElapsedMinutes: float64(binary.BigEndian.Uint32(w[rtmdElapsedStart:rtmdWordStart])) / 60,
		StatusWord:     word,
		Base:           DiskState(base),
		Deleted:        word&DiskDeleteBit == DiskDeleteBit,
		DeleteMarker:   binary.BigEndian.Uint16(w[rtmdMarkerStart:rtmdNameStart]),
		VolumeName:     string(name),
	}, nil
}

// ---- RTMR ----

func decodeRecordTimer(data []byte, rep *Report) {
	idx := bytes.Index(data, []byte(TagRecordTimer))
	if idx < 0 {
		return
	}
	rep.Tags = append(rep.Tags, TagRecordTimer)

	off := idx + rtmrWindowOffset
	w := window(data, off, rtmrWindowLen)
	if len(w) < rtmrFieldsLen {
		rep.fail(TagRecordTimer, 0, off, shortWindow(len(w), rtmrFieldsLen))
		return
	}

	rep.Timer = &RecordTimer{
		Hours:     w[0],
		Minutes:   w[1],
		Seconds:   w[2],
		Recording: w[2] > recordingSecondsThreshold,
	}
}

// ---- RMSu ----

// Recognised only. Payload decoding plugs in here.
func decodeRecordSettings(data []byte, rep *Report) {
	if bytes.Contains(data, []byte(TagRecordSettings)) {
		rep.Tags = append(rep.Tags, TagRecordSettings)
		rep.SettingsSeen = true
	}
}

// ---- helpers ----

// window returns up to n bytes starting at off, clipped to data.
func window(data []byte, off, n int) []byte {
	if off >= len(data) {
		return nil
	}
	end := off + n
	if end > len(data) {
		end = len(data)
	}
	return data[off:end]
}

func shortWindow(got, want int) string {
	return fmt.Sprintf("short window: %d of %d bytes", got, want)
}

func (r *Report) fail(tag string, index, offset int, reason string) {
	r.Failures = append(r.Failures, DecodeError{
		Tag:    tag,
		Index:  index,
		Offset: offset,
		Reason: reason,
	})
}
