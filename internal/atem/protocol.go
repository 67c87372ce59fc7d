// internal/atem/protocol.go
package atem

// Protocol constants. These are fixed by the switcher and MUST NOT be configurable
// beyond the port override used for testing and NAT setups.

// UDPPort is the switcher control port.
const UDPPort = 9910

// MaxDatagram bounds a single receive.
const MaxDatagram = 10240
