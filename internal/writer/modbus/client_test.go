// internal/writer/modbus/client_test.go
package modbus

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fc16Write struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

// serveFC16 accepts one connection and acknowledges every FC16 request.
func serveFC16(t *testing.T) (string, <-chan fc16Write) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	writes := make(chan fc16Write, 8)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			mbap := make([]byte, 7)
			if _, err := io.ReadFull(conn, mbap); err != nil {
				return
			}
			pdu := make([]byte, int(binary.BigEndian.Uint16(mbap[4:6]))-1)
			if _, err := io.ReadFull(conn, pdu); err != nil {
				return
			}

			qty := binary.BigEndian.Uint16(pdu[3:5])
			w := fc16Write{unitID: mbap[6], addr: binary.BigEndian.Uint16(pdu[1:3])}
			for i := 0; i < int(qty); i++ {
				w.regs = append(w.regs, binary.BigEndian.Uint16(pdu[6+2*i:]))
			}
			writes <- w

			resp := make([]byte, 12)
			copy(resp[0:4], mbap[0:4])
			binary.BigEndian.PutUint16(resp[4:6], 6)
			resp[6] = mbap[6]
			copy(resp[7:12], pdu[0:5])
			if _, err := conn.Write(resp); err != nil {
				return
			}
		}
	}()

	return ln.Addr().String(), writes
}

func TestEndpointClient_WriteRegisters(t *testing.T) {
	addr, writes := serveFC16(t)

	c, err := NewEndpointClient(Config{
		Endpoint: addr,
		Timeout:  time.Second,
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.WriteRegisters(7, 100, []uint16{0x0102, 0xFFFF, 0}))

	select {
	case w := <-writes:
		assert.Equal(t, uint8(7), w.unitID)
		assert.Equal(t, uint16(100), w.addr)
		assert.Equal(t, []uint16{0x0102, 0xFFFF, 0}, w.regs)
	case <-time.After(2 * time.Second):
		t.Fatal("no write observed")
	}

	assert.Equal(t, gobreaker.StateClosed, c.State())
}

func TestEndpointClient_BreakerOpens(t *testing.T) {
	// reserve a port, then free it so dials are refused
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	var transitions []gobreaker.State

	c, err := NewEndpointClient(Config{
		Endpoint: addr,
		Timeout:  200 * time.Millisecond,
		Breaker:  BreakerConfig{MinRequests: 2, FailureRatio: 0.5, Timeout: time.Minute},
		Logger:   zaptest.NewLogger(t),
		OnStateChange: func(_ string, to gobreaker.State) {
			transitions = append(transitions, to)
		},
	})
	require.NoError(t, err)

	require.Error(t, c.WriteRegisters(1, 0, []uint16{1}))
	require.Error(t, c.WriteRegisters(1, 0, []uint16{1}))

	err = c.WriteRegisters(1, 0, []uint16{1})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, gobreaker.StateOpen, c.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)
}

func TestEndpointClient_EmptyWriteIsNoop(t *testing.T) {
	c, err := NewEndpointClient(Config{Endpoint: "127.0.0.1:1"})
	require.NoError(t, err)
	require.NoError(t, c.WriteRegisters(1, 0, nil))
}

func TestNewEndpointClient_RequiresEndpoint(t *testing.T) {
	_, err := NewEndpointClient(Config{})
	require.Error(t, err)
}

func TestPackRegisters(t *testing.T) {
	assert.Equal(t, []byte{0x12, 0x34, 0x00, 0xFF}, packRegisters([]uint16{0x1234, 0x00FF}))
}
