// internal/poller/poller.go
package poller

import (
	"errors"
	"time"

	"github.com/tamzrod/atem-replicator/internal/recstatus"
)

// ErrNotConnected is reported when the source is down and cannot be reopened.
var ErrNotConnected = errors.New("poller: source not connected")

// Source abstracts the device client operations needed by the poller.
// *atem.Client satisfies it.
type Source interface {
	ParsePacket() int
	Available() int
	FlushInputBuffer() []byte
	Connected() bool
	Datagrams() uint64
	LastReport() recstatus.Report
	Snapshot() recstatus.Snapshot
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	DeviceID string
	Interval time.Duration

	// StaleAfter <= 0 disables stale detection.
	StaleAfter time.Duration

	// MaxBurst bounds the receive attempts of one cycle. 0 => 1.
	MaxBurst int

	// DrainInput discards the byte buffer after each cycle. Nothing in the
	// replicator consumes raw bytes, so without it the buffer only grows.
	DrainInput bool
}

// Poller is a dumb, clock-driven reader.
type Poller struct {
	cfg       Config
	src       Source
	reconnect func() error

	now    func() time.Time
	lastRx time.Time
}

// New creates a poller with immutable config.
// reconnect may be nil; it is called at most once per cycle while the
// source is down.
func New(cfg Config, src Source, reconnect func() error) (*Poller, error) {
	if cfg.DeviceID == "" {
		return nil, errors.New("poller: device id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if src == nil {
		return nil, errors.New("poller: source required")
	}
	if cfg.MaxBurst <= 0 {
		cfg.MaxBurst = 1
	}

	p := &Poller{cfg: cfg, src: src, reconnect: reconnect, now: time.Now}
	p.lastRx = p.now()
	return p, nil
}

// PollOnce performs exactly one poll cycle.
// A cycle that receives nothing is not an error.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		DeviceID: p.cfg.DeviceID,
		At:       p.now(),
	}

	if !p.src.Connected() {
		if p.reconnect == nil {
			res.Err = ErrNotConnected
			return res
		}
		if err := p.reconnect(); err != nil {
			res.Err = err
			return res
		}
		// a fresh link gets a full stale window
		p.lastRx = res.At
	}

	for i := 0; i < p.cfg.MaxBurst; i++ {
		before := p.src.Datagrams()
		p.src.ParsePacket()
		if p.src.Datagrams() == before {
			break
		}

		res.Received++
		rep := p.src.LastReport()
		res.Report = rep
		res.Failures = append(res.Failures, rep.Failures...)
	}

	if res.Received > 0 {
		p.lastRx = res.At
	}

	res.Available = p.src.Available()
	if p.cfg.DrainInput && res.Available > 0 {
		p.src.FlushInputBuffer()
	}

	res.Snapshot = p.src.Snapshot()
	res.Stale = p.cfg.StaleAfter > 0 && res.At.Sub(p.lastRx) > p.cfg.StaleAfter

	return res
}

// DeviceID returns the configured device id.
func (p *Poller) DeviceID() string { return p.cfg.DeviceID }
