// internal/atem/client.go
package atem

import (
	"encoding/hex"
	"errors"
	"net"
	"strconv"

	"go.uber.org/zap"

	"github.com/tamzrod/atem-replicator/internal/recstatus"
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	Port     int      // 0 => UDPPort
	Dialer   Dialer   // nil => UDPDialer{}
	Logger   *zap.Logger
	Observer Observer
}

// Client is a polled UDP adapter with an Arduino-style byte API.
//
// It owns one datagram endpoint, a FIFO input buffer and the decoded
// recorder status. There are no goroutines and no locks: the caller
// drives ParsePacket and must serialize access if it shares the client.
type Client struct {
	port   int
	dialer Dialer
	log    *zap.Logger
	obs    Observer

	conn          Conn
	addr          string
	connected     bool
	everConnected bool

	buf Buffer
	rx  []byte

	state     recstatus.State
	last      recstatus.Report
	datagrams uint64
}

// New creates a disconnected client.
func New(opts Options) *Client {
	c := &Client{
		port:   opts.Port,
		dialer: opts.Dialer,
		log:    opts.Logger,
		obs:    opts.Observer,
		rx:     make([]byte, MaxDatagram),
	}
	if c.port == 0 {
		c.port = UDPPort
	}
	if c.dialer == nil {
		c.dialer = UDPDialer{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.obs == nil {
		c.obs = noopObserver{}
	}
	c.buf.log = c.log
	return c
}

// ---- connection lifecycle ----

// Connect opens the endpoint to host on the protocol port.
// Connecting while connected performs an implicit Stop first.
func (c *Client) Connect(host string) error {
	if c.connected {
		c.log.Debug("closing previous connection", zap.String("addr", c.addr))
		c.Stop()
	}

	addr := net.JoinHostPort(host, strconv.Itoa(c.port))
	c.log.Info("connecting", zap.String("addr", addr))

	conn, err := c.dialer.Dial(addr)
	if err != nil {
		return &TransportError{Op: "dial", Addr: addr, Err: err}
	}

	c.conn = conn
	c.addr = addr
	c.connected = true
	c.everConnected = true
	return nil
}

// Stop drops the connection and flushes the input buffer.
// UDP has no teardown handshake; the socket is simply released.
func (c *Client) Stop() {
	if c.connected {
		c.connected = false
		if err := c.conn.Close(); err != nil {
			c.log.Debug("close failed", zap.String("addr", c.addr), zap.Error(err))
		}
		c.conn = nil
	}
	c.FlushInputBuffer()
}

// Close is Stop for end-of-life callers that expect an io.Closer.
func (c *Client) Close() error {
	c.Stop()
	return nil
}

// Connected reports the connection flag.
func (c *Client) Connected() bool { return c.connected }

// Addr is the host:port of the current or last connection.
func (c *Client) Addr() string { return c.addr }

// ---- packet intake ----

// ParsePacket makes one non-blocking receive attempt.
//
// With no datagram pending it returns Available() unchanged and decodes
// nothing. Otherwise the datagram is appended to the input buffer and
// decoded on its own (not the accumulated buffer). Receive faults count as
// "no data".
func (c *Client) ParsePacket() int {
	if !c.connected {
		return c.buf.Len()
	}

	n, err := c.conn.TryRead(c.rx)
	if err != nil {
		if !errors.Is(err, ErrWouldBlock) {
			c.obs.ReceiveFailed()
			c.log.Debug("receive failed", zap.String("addr", c.addr), zap.Error(err))
		}
		return c.buf.Len()
	}
	if n == 0 {
		return c.buf.Len()
	}

	data := c.rx[:n]
	c.buf.Append(data)
	c.datagrams++
	c.obs.DatagramReceived(n)

	if ce := c.log.Check(zap.DebugLevel, "datagram received"); ce != nil {
		ce.Write(
			zap.Int("bytes", n),
			zap.String("data", hex.EncodeToString(data)),
			zap.Int("available", c.buf.Len()),
		)
	}

	c.decode(data)

	return c.buf.Len()
}

func (c *Client) decode(data []byte) {
	rep := recstatus.Decode(data)

	for _, tag := range rep.Tags {
		c.obs.TagDecoded(tag)
	}
	for _, f := range rep.Failures {
		c.obs.DecodeFailed(f.Tag)
		c.log.Debug("status window skipped",
			zap.String("tag", f.Tag),
			zap.Int("index", f.Index),
			zap.Int("offset", f.Offset),
			zap.String("reason", f.Reason),
		)
	}
	if rep.SettingsSeen {
		c.log.Debug("record settings seen")
	}

	c.state.Apply(rep)
	c.last = rep
}

// ---- byte API ----

// Available is the number of buffered bytes.
func (c *Client) Available() int { return c.buf.Len() }

// Read resets *dst to zero length and moves up to maxSize buffered bytes
// into it in arrival order. maxSize <= 0 drains everything.
func (c *Client) Read(dst *[]byte, maxSize int) (int, error) {
	if !c.everConnected {
		return 0, &ConfigurationError{Op: "read"}
	}

	*dst = (*dst)[:0]

	n := c.buf.Len()
	if maxSize > 0 {
		n = min(n, maxSize)
	}
	*dst = append(*dst, c.buf.PopFront(n)...)
	return n, nil
}

// Write sends payload, truncated to length when length > 0.
// Send faults are returned as *TransportError; there is no retry.
func (c *Client) Write(payload []byte, length int) (int, error) {
	if !c.connected {
		return 0, &ConfigurationError{Op: "write"}
	}
	return c.send(payload, length)
}

func (c *Client) send(p []byte, maxLen int) (int, error) {
	if maxLen > 0 && maxLen < len(p) {
		p = p[:maxLen]
	}

	if ce := c.log.Check(zap.DebugLevel, "sending"); ce != nil {
		ce.Write(zap.String("data", hex.EncodeToString(p)))
	}

	n, err := c.conn.Write(p)
	if err != nil {
		c.obs.SendFailed()
		return n, &TransportError{Op: "send", Addr: c.addr, Err: err}
	}
	c.obs.Sent(n)
	return n, nil
}

// Peek returns a copy of the buffered bytes.
func (c *Client) Peek() []byte { return c.buf.Peek() }

// FlushInputBuffer clears the input buffer and returns what it held.
func (c *Client) FlushInputBuffer() []byte { return c.buf.Flush() }

// ---- decoded status ----

// RecordingStatus is the last RTMS summary; ok is false until one decoded.
func (c *Client) RecordingStatus() (recstatus.RecordingStatus, bool) { return c.state.Recording() }

// DiskStatuses is the disk table of the most recent datagram carrying RTMD.
func (c *Client) DiskStatuses() []recstatus.DiskStatus { return c.state.Disks() }

// RecordTimer is the last RTMR timecode; ok is false until one decoded.
func (c *Client) RecordTimer() (recstatus.RecordTimer, bool) { return c.state.Timer() }

// Snapshot is a detached copy of all decoded status.
func (c *Client) Snapshot() recstatus.Snapshot { return c.state.Snapshot() }

// LastReport is the decode report of the most recent datagram.
func (c *Client) LastReport() recstatus.Report { return c.last }

// Datagrams counts datagrams received since New.
func (c *Client) Datagrams() uint64 { return c.datagrams }
