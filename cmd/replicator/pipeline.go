// cmd/replicator/pipeline.go
package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/atem-replicator/internal/atem"
	"github.com/tamzrod/atem-replicator/internal/poller"
	"github.com/tamzrod/atem-replicator/internal/status"
	"github.com/tamzrod/atem-replicator/internal/writer"
)

// Last error codes published in the health block.
const (
	errCodeGeneric      uint16 = 1
	errCodeNotConnected uint16 = 2
	errCodeTransport    uint16 = 3
)

// healthGauge is the metrics surface the pipeline reports to.
type healthGauge interface {
	SetHealth(deviceID string, health uint16)
}

// pipeline owns the health snapshot of one device and fans poll results
// out to the recorder writer and the status writer.
type pipeline struct {
	deviceID string
	data     writer.Writer
	status   writer.StatusWriter // nil => disabled
	gauge    healthGauge
	log      *zap.Logger

	snap status.Snapshot
}

// start re-asserts the full health block in its boot state.
func (p *pipeline) start() {
	p.snap = status.Snapshot{Health: status.HealthUnknown}
	p.gauge.SetHealth(p.deviceID, p.snap.Health)
	p.publish("status write failed on start")
}

// handle delivers one poll result.
func (p *pipeline) handle(res poller.PollResult) {
	// --- data delivery ---
	if err := p.data.Write(res); err != nil {
		p.log.Warn("writer error", zap.Error(err))
	}

	if res.Err != nil {
		p.log.Debug("poll failed", zap.Error(res.Err))
	}
	if res.Received > 0 && len(res.Failures) > 0 {
		p.log.Debug("decode failures", zap.Int("count", len(res.Failures)))
	}

	// --- status update (device-level truth) ---
	health, code := healthOf(res)
	if p.snap.Observe(health, code) {
		p.log.Info("device health changed",
			zap.Uint16("health", p.snap.Health),
			zap.Uint16("last_error", p.snap.LastErrorCode),
		)
		p.gauge.SetHealth(p.deviceID, p.snap.Health)
		p.publish("status write failed")
	}
}

// tick runs at 1 Hz. seconds_in_error increments here only.
func (p *pipeline) tick() {
	if p.snap.Tick() {
		p.publish("status seconds tick write failed")
	}
}

func (p *pipeline) publish(msg string) {
	if p.status == nil {
		return
	}
	if err := p.status.WriteStatus(p.snap); err != nil {
		p.log.Warn(msg, zap.Error(err))
	}
}

// run consumes results until ctx is done.
func (p *pipeline) run(ctx context.Context, in <-chan poller.PollResult) {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	p.start()

	for {
		select {
		case <-ctx.Done():
			return
		case res := <-in:
			p.handle(res)
		case <-secTicker.C:
			p.tick()
		}
	}
}

func healthOf(res poller.PollResult) (uint16, uint16) {
	switch {
	case res.Err != nil:
		return status.HealthError, errorCode(res.Err)
	case res.Stale:
		return status.HealthStale, 0
	default:
		return status.HealthOK, 0
	}
}

// errorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns errCodeGeneric.
func errorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}

	var te *atem.TransportError
	switch {
	case errors.Is(err, poller.ErrNotConnected), errors.Is(err, atem.ErrNotConnected):
		return errCodeNotConnected
	case errors.As(err, &te):
		return errCodeTransport
	}

	return errCodeGeneric
}
