//go:build unix

// internal/atem/conn_unix.go
package atem

import (
	"errors"
	"syscall"
)

// TryRead performs one read on the non-blocking descriptor.
// Returning true from the callback stops the runtime from parking on
// EAGAIN, so the call never waits.
func (c *udpConn) TryRead(p []byte) (int, error) {
	var (
		n     int
		opErr error
	)

	err := c.raw.Read(func(fd uintptr) bool {
		n, opErr = syscall.Read(int(fd), p)
		return true
	})
	if err != nil {
		return 0, err
	}

	if opErr != nil {
		if errors.Is(opErr, syscall.EAGAIN) || errors.Is(opErr, syscall.EWOULDBLOCK) {
			return 0, ErrWouldBlock
		}
		return 0, opErr
	}
	return n, nil
}
