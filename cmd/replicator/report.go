// cmd/replicator/report.go
package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tamzrod/atem-replicator/internal/recstatus"
)

// reportView is the printable form of a decode report.
type reportView struct {
	Tags      []string       `yaml:"tags"`
	Recording *recordingView `yaml:"recording,omitempty"`
	Disks     []diskView     `yaml:"disks,omitempty"`
	Timer     *timerView     `yaml:"timer,omitempty"`
	Settings  bool           `yaml:"settings_seen,omitempty"`
	Failures  []failureView  `yaml:"failures,omitempty"`
}

type recordingView struct {
	Code             uint16  `yaml:"code"`
	Status           string  `yaml:"status"`
	RemainingMinutes float64 `yaml:"remaining_minutes"`
}

type diskView struct {
	ID             uint32  `yaml:"id"`
	Volume         string  `yaml:"volume"`
	State          string  `yaml:"state"`
	Deleted        bool    `yaml:"deleted"`
	StatusWord     int16   `yaml:"status_word"`
	ElapsedMinutes float64 `yaml:"elapsed_minutes"`
}

type timerView struct {
	Timecode  string `yaml:"timecode"`
	Recording bool   `yaml:"recording"`
}

type failureView struct {
	Tag    string `yaml:"tag"`
	Index  int    `yaml:"index"`
	Offset int    `yaml:"offset"`
	Reason string `yaml:"reason"`
}

func viewOf(r recstatus.Report) reportView {
	v := reportView{Tags: r.Tags, Settings: r.SettingsSeen}

	if r.Recording != nil {
		v.Recording = &recordingView{
			Code:             r.Recording.Code,
			Status:           r.Recording.Label.String(),
			RemainingMinutes: r.Recording.RemainingMinutes,
		}
	}
	for _, d := range r.Disks {
		v.Disks = append(v.Disks, diskView{
			ID:             d.DiskID,
			Volume:         d.VolumeName,
			State:          d.Base.String(),
			Deleted:        d.Deleted,
			StatusWord:     d.StatusWord,
			ElapsedMinutes: d.ElapsedMinutes,
		})
	}
	if r.Timer != nil {
		v.Timer = &timerView{
			Timecode:  timecode(*r.Timer),
			Recording: r.Timer.Recording,
		}
	}
	for _, f := range r.Failures {
		v.Failures = append(v.Failures, failureView(f))
	}

	return v
}

func timecode(t recstatus.RecordTimer) string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

func printReport(w io.Writer, r recstatus.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(viewOf(r)); err != nil {
		return err
	}
	return enc.Close()
}
