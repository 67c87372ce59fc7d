// internal/writer/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while the endpoint breaker rejects writes.
var ErrCircuitOpen = errors.New("writer modbus: circuit open")

// EndpointClient is a single TCP connection to one register endpoint.
// It serializes requests because it mutates SlaveId per write.
// The connection is opened lazily by the first write and reopened after a
// transport failure. A circuit breaker sheds writes to a dead endpoint.
type EndpointClient struct {
	endpoint string
	log      *zap.Logger

	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client

	cb *gobreaker.CircuitBreaker[[]byte]
}

// BreakerConfig tunes the endpoint circuit breaker. Zero values select defaults.
type BreakerConfig struct {
	MaxRequests  uint32        // half-open probes, 0 => 1
	Interval     time.Duration // closed-state count reset, 0 => 30s
	Timeout      time.Duration // open -> half-open, 0 => 5s
	MinRequests  uint32        // 0 => 5
	FailureRatio float64       // 0 => 0.6
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
	Breaker  BreakerConfig
	Logger   *zap.Logger

	// OnStateChange is called on breaker transitions (optional).
	OnStateChange func(endpoint string, to gobreaker.State)
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("endpoint", cfg.Endpoint))

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	c := &EndpointClient{
		endpoint: cfg.Endpoint,
		log:      log,
		handler:  h,
		client:   modbus.NewClient(h),
	}
	c.cb = gobreaker.NewCircuitBreaker[[]byte](breakerSettings(cfg, log))

	return c, nil
}

func breakerSettings(cfg Config, log *zap.Logger) gobreaker.Settings {
	b := cfg.Breaker
	if b.MaxRequests == 0 {
		b.MaxRequests = 1
	}
	if b.Interval == 0 {
		b.Interval = 30 * time.Second
	}
	if b.Timeout == 0 {
		b.Timeout = 5 * time.Second
	}
	if b.MinRequests == 0 {
		b.MinRequests = 5
	}
	if b.FailureRatio == 0 {
		b.FailureRatio = 0.6
	}

	return gobreaker.Settings{
		Name:        cfg.Endpoint,
		MaxRequests: b.MaxRequests,
		Interval:    b.Interval,
		Timeout:     b.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= b.MinRequests && failureRatio >= b.FailureRatio
		},
		// A Modbus exception proves the endpoint is alive.
		IsSuccessful: func(err error) bool {
			var mbErr *modbus.ModbusError
			return err == nil || errors.As(err, &mbErr)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, to)
			}
		},
	}
}

// Endpoint returns the configured host:port.
func (c *EndpointClient) Endpoint() string { return c.endpoint }

// State is the current breaker state.
func (c *EndpointClient) State() gobreaker.State { return c.cb.State() }

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// WriteRegisters writes regs as holding registers (FC16) at addr on unitID.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}

	_, err := c.cb.Execute(func() ([]byte, error) {
		return c.writeRegisters(unitID, addr, regs)
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %s: %v", ErrCircuitOpen, c.endpoint, err)
	default:
		return err
	}
}

func (c *EndpointClient) writeRegisters(unitID uint8, addr uint16, regs []uint16) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID

	qty := uint16(len(regs))
	payload := packRegisters(regs)

	res, err := c.client.WriteMultipleRegisters(addr, qty, payload)
	if err != nil {
		var mbErr *modbus.ModbusError
		if !errors.As(err, &mbErr) {
			// drop the socket so the next write redials
			_ = c.handler.Close()
		}
		return nil, err
	}
	return res, nil
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
