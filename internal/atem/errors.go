// internal/atem/errors.go
package atem

import (
	"errors"
	"fmt"
)

// ErrNotConnected matches every ConfigurationError via errors.Is.
var ErrNotConnected = errors.New("atem: not connected")

// ErrWouldBlock is returned by Conn.TryRead when no datagram is pending.
// The client treats it as "zero new bytes", never as a failure.
var ErrWouldBlock = errors.New("atem: no datagram pending")

// ConfigurationError reports a read or write attempted without a connection.
type ConfigurationError struct {
	Op string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("atem: %s before successful connect", e.Op)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrNotConnected }

// TransportError is a socket fault on the dial or send path.
// Receive faults are absorbed and never surface as TransportError.
type TransportError struct {
	Op   string
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("atem: %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
