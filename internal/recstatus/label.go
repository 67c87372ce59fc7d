// internal/recstatus/label.go
package recstatus

import "fmt"

// Label is the result of a code table lookup.
// Known is false when the code has no table entry. An unmapped code is
// valid data, not a decode failure.
type Label struct {
	Name  string
	Code  int
	Known bool
}

const unknownName = "unknown"

func (l Label) String() string {
	if l.Known {
		return l.Name
	}
	return fmt.Sprintf("%s(%d)", unknownName, l.Code)
}

// IsUnknown reports whether the label resolves to "unknown", either because
// the code is unmapped or because the table maps it to "unknown".
func (l Label) IsUnknown() bool {
	return !l.Known || l.Name == unknownName
}

func known(name string, code int) Label { return Label{Name: name, Code: code, Known: true} }
func unmapped(code int) Label           { return Label{Name: unknownName, Code: code} }

// Media status codes carried by RTMS.
var mediaStatusNames = map[uint16]string{
	0:     "No media",
	2:     "ok",
	4:     "media full",
	8:     "media error",
	16:    "media unformatted",
	32:    "dropping frames",
	32768: unknownName,
}

// Disk base states carried by RTMD (status word with the delete bit cleared).
var diskStateNames = map[int16]string{
	1: "idle",
	2: "unformatted",
	4: "active",
	8: "recording",
}

// MediaStatus maps an RTMS status code.
func MediaStatus(code uint16) Label {
	if name, ok := mediaStatusNames[code]; ok {
		return known(name, int(code))
	}
	return unmapped(int(code))
}

// DiskState maps an RTMD base code.
func DiskState(code int16) Label {
	if name, ok := diskStateNames[code]; ok {
		return known(name, int(code))
	}
	return unmapped(int(code))
}
