// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/atem-replicator/internal/atem"
	cfg "github.com/tamzrod/atem-replicator/internal/config"
)

// Build constructs a Poller around an atem.Client and wires its lifecycle.
// The initial connect is a fail-fast startup check; later reconnects are
// one attempt per tick, driven by the Poller.
func Build(d cfg.DeviceConfig, log *zap.Logger, obs atem.Observer) (*Poller, func() error, error) {
	if log == nil {
		log = zap.NewNop()
	}

	client := atem.New(atem.Options{
		Port:     d.Source.Port,
		Logger:   log.With(zap.String("device", d.ID)),
		Observer: obs,
	})

	if err := client.Connect(d.Source.Host); err != nil {
		return nil, nil, fmt.Errorf("poller: device %q: %w", d.ID, err)
	}

	reconnect := func() error { return client.Connect(d.Source.Host) }

	p, err := New(
		Config{
			DeviceID:   d.ID,
			Interval:   time.Duration(d.Poll.IntervalMs) * time.Millisecond,
			StaleAfter: time.Duration(d.Source.StaleAfterMs) * time.Millisecond,
			MaxBurst:   d.Poll.MaxBurst,
			DrainInput: !d.Poll.KeepInput,
		},
		client,
		reconnect,
	)
	if err != nil {
		client.Stop()
		return nil, nil, err
	}

	return p, client.Close, nil
}
