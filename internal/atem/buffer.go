// internal/atem/buffer.go
package atem

import "go.uber.org/zap"

// Buffer is the FIFO byte queue between datagram arrival and consumption.
// The zero value is ready to use.
type Buffer struct {
	data []byte
	log  *zap.Logger
}

// Append queues p at the tail.
func (b *Buffer) Append(p []byte) {
	b.data = append(b.data, p...)
}

// PopFront removes and returns up to n bytes from the head.
// Fewer are returned when the buffer is shorter; never fails.
func (b *Buffer) PopFront(n int) []byte {
	if n <= 0 || len(b.data) == 0 {
		return nil
	}
	n = min(n, len(b.data))

	out := make([]byte, n)
	copy(out, b.data[:n])

	b.data = b.data[n:]
	if len(b.data) == 0 {
		b.data = nil
	}
	return out
}

// Peek returns a copy of the queued bytes without consuming them.
func (b *Buffer) Peek() []byte {
	if len(b.data) == 0 {
		return nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Flush returns and clears everything queued.
func (b *Buffer) Flush() []byte {
	old := b.data
	b.data = nil

	if b.log != nil {
		b.log.Debug("input buffer flushed", zap.Int("bytes", len(old)))
	}
	return old
}

// Len is the number of queued bytes.
func (b *Buffer) Len() int { return len(b.data) }
