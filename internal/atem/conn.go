// internal/atem/conn.go
package atem

import (
	"net"
	"syscall"
)

// Conn is the datagram endpoint the client drives.
// This abstraction enables unit testing without real network connections.
type Conn interface {
	// TryRead receives one pending datagram without waiting.
	// It returns ErrWouldBlock when nothing is queued.
	TryRead(p []byte) (int, error)

	// Write sends p as one datagram.
	Write(p []byte) (int, error)

	Close() error

	RemoteAddr() net.Addr
}

// Dialer opens a Conn to a remote host:port.
type Dialer interface {
	Dial(addr string) (Conn, error)
}

// UDPDialer dials real UDP sockets.
type UDPDialer struct{}

// Dial resolves addr and opens a connected UDP socket.
func (UDPDialer) Dial(addr string) (Conn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}

	raw, err := conn.SyscallConn()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &udpConn{conn: conn, raw: raw}, nil
}

// udpConn wraps *net.UDPConn. TryRead is platform specific.
type udpConn struct {
	conn *net.UDPConn
	raw  syscall.RawConn
}

func (c *udpConn) Write(p []byte) (int, error) { return c.conn.Write(p) }

func (c *udpConn) Close() error { return c.conn.Close() }

func (c *udpConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// LocalAddr is the bound local address (useful to address the socket in tests).
func (c *udpConn) LocalAddr() net.Addr { return c.conn.LocalAddr() }
