// internal/atem/buffer_test.go
package atem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuffer_AppendGrowsByAppendedLength(t *testing.T) {
	var b Buffer

	chunks := [][]byte{{1, 2, 3}, {}, {4}, {5, 6, 7, 8, 9}}
	for _, c := range chunks {
		before := b.Len()
		b.Append(c)
		assert.Equal(t, before+len(c), b.Len())
	}
}

func TestBuffer_PopFrontFIFO(t *testing.T) {
	var b Buffer
	b.Append([]byte{1, 2, 3})
	b.Append([]byte{4, 5})

	assert.Equal(t, []byte{1, 2}, b.PopFront(2))
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []byte{3, 4, 5}, b.PopFront(10))
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.PopFront(1))
	assert.Nil(t, b.PopFront(0))
}

func TestBuffer_PopFrontDetached(t *testing.T) {
	var b Buffer
	b.Append([]byte{1, 2, 3, 4})

	out := b.PopFront(2)
	out[0] = 99

	assert.Equal(t, []byte{3, 4}, b.Peek())
}

func TestBuffer_PeekIsACopy(t *testing.T) {
	var b Buffer
	b.Append([]byte{7, 8})

	p := b.Peek()
	p[0] = 0

	assert.Equal(t, []byte{7, 8}, b.Peek())
	assert.Equal(t, 2, b.Len())
}

func TestBuffer_FlushReturnsContents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := Buffer{log: zap.New(core)}

	b.Append([]byte{1, 2, 3})
	old := b.Flush()

	assert.Equal(t, []byte{1, 2, 3}, old)
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.Flush())

	entries := logs.FilterMessage("input buffer flushed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(3), entries[0].ContextMap()["bytes"])
	assert.Equal(t, int64(0), entries[1].ContextMap()["bytes"])
}
