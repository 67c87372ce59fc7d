// internal/writer/ingest/client.go
package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"
)

// Raw Ingest v1 wire constants.
const (
	magic     = "RI"
	versionV1 = 0x01
	headerLen = 10

	// AreaHoldingRegisters is the only area the replicator writes.
	AreaHoldingRegisters byte = 3

	respOK       byte = 0x00
	respRejected byte = 0x01
)

// ErrRejected is returned when the memory server refuses a packet.
var ErrRejected = errors.New("writer ingest: rejected")

// EndpointClient pushes register blocks to a memory server speaking Raw
// Ingest v1. Stateless: one packet per connection, one status byte back.
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
	log      *zap.Logger
}

type Config struct {
	Endpoint string
	Timeout  time.Duration // <= 0 => 2s
	Logger   *zap.Logger
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &EndpointClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		log:      log.With(zap.String("endpoint", cfg.Endpoint)),
	}, nil
}

// Close is a no-op; no connection outlives a write.
func (c *EndpointClient) Close() error { return nil }

// WriteRegisters delivers regs into the holding register area.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}
	return c.send(Packet{
		Area:   AreaHoldingRegisters,
		UnitID: unitID,
		Addr:   addr,
		Regs:   regs,
	})
}

func (c *EndpointClient) send(p Packet) error {
	conn, err := net.DialTimeout("tcp", c.endpoint, c.timeout)
	if err != nil {
		return fmt.Errorf("writer ingest: dial: %w", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := conn.Write(p.Marshal()); err != nil {
		return fmt.Errorf("writer ingest: write: %w", err)
	}

	var resp [1]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		return fmt.Errorf("writer ingest: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		c.log.Debug("ingest accepted", zap.Uint8("unit", p.UnitID), zap.Uint16("addr", p.Addr), zap.Int("count", len(p.Regs)))
		return nil
	case respRejected:
		return ErrRejected
	default:
		return fmt.Errorf("writer ingest: unknown status 0x%02x", resp[0])
	}
}

// Packet is one Raw Ingest v1 register write.
//
// Layout (big-endian, 10 byte header):
//
//	0-1  magic "RI"
//	2    version
//	3    area
//	4-5  unit id
//	6-7  address
//	8-9  count
//	10+  registers
type Packet struct {
	Area   byte
	UnitID uint8
	Addr   uint16
	Regs   []uint16
}

func (p Packet) Marshal() []byte {
	b := make([]byte, headerLen+2*len(p.Regs))

	copy(b[0:2], magic)
	b[2] = versionV1
	b[3] = p.Area
	binary.BigEndian.PutUint16(b[4:6], uint16(p.UnitID))
	binary.BigEndian.PutUint16(b[6:8], p.Addr)
	binary.BigEndian.PutUint16(b[8:10], uint16(len(p.Regs)))

	for i, r := range p.Regs {
		binary.BigEndian.PutUint16(b[headerLen+2*i:], r)
	}
	return b
}

// ParsePacket is the inverse of Marshal.
func ParsePacket(b []byte) (Packet, error) {
	if len(b) < headerLen {
		return Packet{}, fmt.Errorf("writer ingest: short header: %d bytes", len(b))
	}
	if string(b[0:2]) != magic || b[2] != versionV1 {
		return Packet{}, errors.New("writer ingest: bad magic or version")
	}
	count := int(binary.BigEndian.Uint16(b[8:10]))
	if len(b) != headerLen+2*count {
		return Packet{}, fmt.Errorf("writer ingest: payload %d bytes, want %d", len(b)-headerLen, 2*count)
	}

	p := Packet{
		Area:   b[3],
		UnitID: uint8(binary.BigEndian.Uint16(b[4:6])),
		Addr:   binary.BigEndian.Uint16(b[6:8]),
		Regs:   make([]uint16, count),
	}
	for i := range p.Regs {
		p.Regs[i] = binary.BigEndian.Uint16(b[headerLen+2*i:])
	}
	return p, nil
}
