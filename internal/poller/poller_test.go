// internal/poller/poller_test.go
package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/atem-replicator/internal/recstatus"
)

// fakeSource replays queued reports as datagrams.
type fakeSource struct {
	connected bool
	pending   []recstatus.Report
	buffered  int
	datagrams uint64
	last      recstatus.Report
	flushed   int
}

func (f *fakeSource) ParsePacket() int {
	if len(f.pending) > 0 {
		f.last = f.pending[0]
		f.pending = f.pending[1:]
		f.datagrams++
		f.buffered += 16
	}
	return f.buffered
}

func (f *fakeSource) Available() int               { return f.buffered }
func (f *fakeSource) Connected() bool              { return f.connected }
func (f *fakeSource) Datagrams() uint64            { return f.datagrams }
func (f *fakeSource) LastReport() recstatus.Report { return f.last }
func (f *fakeSource) Snapshot() recstatus.Snapshot { return recstatus.Snapshot{Updates: f.datagrams} }
func (f *fakeSource) FlushInputBuffer() []byte {
	f.flushed++
	out := make([]byte, f.buffered)
	f.buffered = 0
	return out
}

func report(tag string, failures ...recstatus.DecodeError) recstatus.Report {
	return recstatus.Report{Tags: []string{tag}, Failures: failures}
}

func newTestPoller(t *testing.T, src Source, cfg Config, reconnect func() error) (*Poller, *time.Time) {
	t.Helper()

	if cfg.DeviceID == "" {
		cfg.DeviceID = "d1"
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Millisecond
	}

	p, err := New(cfg, src, reconnect)
	require.NoError(t, err)

	clock := time.Unix(1000, 0)
	p.now = func() time.Time { return clock }
	p.lastRx = clock
	return p, &clock
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Interval: time.Second}, &fakeSource{}, nil)
	require.Error(t, err)

	_, err = New(Config{DeviceID: "d1"}, &fakeSource{}, nil)
	require.Error(t, err)

	_, err = New(Config{DeviceID: "d1", Interval: time.Second}, nil, nil)
	require.Error(t, err)
}

func TestPollOnce_NoData(t *testing.T) {
	src := &fakeSource{connected: true}
	p, _ := newTestPoller(t, src, Config{}, nil)

	res := p.PollOnce()
	require.NoError(t, res.Err)
	assert.Equal(t, "d1", res.DeviceID)
	assert.Zero(t, res.Received)
	assert.True(t, res.Report.Empty())
	assert.False(t, res.Stale)
}

func TestPollOnce_BurstAndFailures(t *testing.T) {
	bad := recstatus.DecodeError{Tag: recstatus.TagDiskTable, Reason: "short"}
	src := &fakeSource{
		connected: true,
		pending: []recstatus.Report{
			report(recstatus.TagRecordStatus),
			report(recstatus.TagDiskTable, bad),
			report(recstatus.TagRecordTimer),
		},
	}
	p, _ := newTestPoller(t, src, Config{MaxBurst: 2, DrainInput: true}, nil)

	res := p.PollOnce()
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Received)
	assert.Equal(t, []string{recstatus.TagDiskTable}, res.Report.Tags)
	assert.Equal(t, []recstatus.DecodeError{bad}, res.Failures)
	assert.Equal(t, 32, res.Available)
	assert.Equal(t, 1, src.flushed)
	assert.Equal(t, uint64(2), res.Snapshot.Updates)

	res = p.PollOnce()
	assert.Equal(t, 1, res.Received)
	assert.Equal(t, []string{recstatus.TagRecordTimer}, res.Report.Tags)
}

func TestPollOnce_KeepsInputWithoutDrain(t *testing.T) {
	src := &fakeSource{connected: true, pending: []recstatus.Report{report(recstatus.TagRecordStatus)}}
	p, _ := newTestPoller(t, src, Config{}, nil)

	p.PollOnce()
	assert.Zero(t, src.flushed)
	assert.Equal(t, 16, src.Available())
}

func TestPollOnce_Stale(t *testing.T) {
	src := &fakeSource{connected: true}
	p, clock := newTestPoller(t, src, Config{StaleAfter: 3 * time.Second}, nil)

	*clock = clock.Add(2 * time.Second)
	assert.False(t, p.PollOnce().Stale)

	*clock = clock.Add(2 * time.Second)
	assert.True(t, p.PollOnce().Stale)

	src.pending = []recstatus.Report{report(recstatus.TagRecordStatus)}
	assert.False(t, p.PollOnce().Stale)
}

func TestPollOnce_NotConnected(t *testing.T) {
	src := &fakeSource{}
	p, _ := newTestPoller(t, src, Config{}, nil)

	res := p.PollOnce()
	require.ErrorIs(t, res.Err, ErrNotConnected)
}

func TestPollOnce_Reconnect(t *testing.T) {
	src := &fakeSource{}
	boom := errors.New("resolve failed")
	calls := 0

	p, _ := newTestPoller(t, src, Config{}, func() error {
		calls++
		if calls == 1 {
			return boom
		}
		src.connected = true
		return nil
	})

	res := p.PollOnce()
	require.ErrorIs(t, res.Err, boom)

	res = p.PollOnce()
	require.NoError(t, res.Err)
	assert.Equal(t, 2, calls)
}

func TestRun_EmitsAndStops(t *testing.T) {
	src := &fakeSource{connected: true}
	p, err := New(Config{DeviceID: "d1", Interval: time.Millisecond}, src, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan PollResult)
	done := make(chan struct{})

	go func() {
		p.Run(ctx, out)
		close(done)
	}()

	select {
	case res := <-out:
		assert.Equal(t, "d1", res.DeviceID)
	case <-time.After(time.Second):
		t.Fatal("no poll result")
	}

	// Run must not hang on an unread channel after cancel.
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
