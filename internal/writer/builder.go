// internal/writer/builder.go
package writer

import (
	"errors"
	"sort"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	cfg "github.com/tamzrod/atem-replicator/internal/config"
	"github.com/tamzrod/atem-replicator/internal/writer/ingest"
	wmodbus "github.com/tamzrod/atem-replicator/internal/writer/modbus"
)

// BuildPlan converts one device config into a Writer Plan.
// Assumes config has already passed conflict validation.
func BuildPlan(d cfg.DeviceConfig, sm cfg.StatusMemoryConfig) (Plan, error) {
	if d.ID == "" {
		return Plan{}, errors.New("writer: device.id required")
	}

	plan := Plan{DeviceID: d.ID}

	for _, t := range d.Targets {
		plan.Targets = append(plan.Targets, TargetEndpoint{
			Endpoint: t.Endpoint,
			UnitID:   t.UnitID,
			Address:  t.Address,
		})
	}

	if d.Source.StatusSlot != nil {
		sp := &StatusPlan{
			BaseSlot:   *d.Source.StatusSlot,
			DeviceName: d.Source.DeviceName,
		}
		if sm.Endpoint != "" {
			sp.Sinks = append(sp.Sinks, StatusSink{Endpoint: sm.Endpoint, UnitID: sm.UnitID})
		}
		for _, t := range d.Targets {
			if t.StatusUnitID != nil {
				sp.Sinks = append(sp.Sinks, StatusSink{Endpoint: t.Endpoint, UnitID: *t.StatusUnitID})
			}
		}
		plan.Status = sp
	}

	return plan, nil
}

// BuildEndpointClients creates one client per unique endpoint across all
// devices, speaking the endpoint's configured protocol. Clients connect
// lazily, so this never touches the network.
// An endpoint shared by several targets uses the largest timeout.
func BuildEndpointClients(
	c *cfg.Config,
	log *zap.Logger,
	onState func(endpoint string, to gobreaker.State),
) (map[string]RegisterClient, func() error, error) {
	timeouts := map[string]int{}
	protocols := map[string]string{}
	use := func(endpoint, proto string, ms int) {
		if ms > timeouts[endpoint] {
			timeouts[endpoint] = ms
		}
		protocols[endpoint] = proto
	}

	r := c.Replicator
	if r.StatusMemory.Endpoint != "" {
		use(r.StatusMemory.Endpoint, r.StatusMemory.Protocol, cfg.DefaultTimeoutMs)
	}
	for _, d := range r.Devices {
		for _, t := range d.Targets {
			use(t.Endpoint, t.Protocol, t.TimeoutMs)
		}
	}

	endpoints := make([]string, 0, len(timeouts))
	for ep := range timeouts {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	clients := make(map[string]RegisterClient, len(endpoints))
	var closers []func() error

	for _, endpoint := range endpoints {
		timeout := time.Duration(timeouts[endpoint]) * time.Millisecond

		var (
			rc      RegisterClient
			closeFn func() error
			err     error
		)

		switch protocols[endpoint] {
		case cfg.ProtocolIngest:
			var ic *ingest.EndpointClient
			ic, err = ingest.NewEndpointClient(ingest.Config{
				Endpoint: endpoint,
				Timeout:  timeout,
				Logger:   log,
			})
			if err == nil {
				rc, closeFn = ic, ic.Close
			}
		default:
			var mc *wmodbus.EndpointClient
			mc, err = wmodbus.NewEndpointClient(wmodbus.Config{
				Endpoint:      endpoint,
				Timeout:       timeout,
				Logger:        log,
				OnStateChange: onState,
			})
			if err == nil {
				rc, closeFn = mc, mc.Close
			}
		}

		if err != nil {
			for _, fn := range closers {
				_ = fn()
			}
			return nil, nil, err
		}
		clients[endpoint] = rc
		closers = append(closers, closeFn)
	}

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	return clients, closeAll, nil
}
