//go:build !unix

// internal/atem/conn_other.go
package atem

import (
	"errors"
	"net"
	"time"
)

// pollGrace bounds TryRead where raw non-blocking reads are unavailable.
const pollGrace = time.Millisecond

// TryRead falls back to a near-immediate read deadline.
func (c *udpConn) TryRead(p []byte) (int, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(pollGrace))

	n, err := c.conn.Read(p)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return 0, ErrWouldBlock
		}
		return 0, err
	}
	return n, nil
}
