// internal/writer/writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/tamzrod/atem-replicator/internal/config"
	"github.com/tamzrod/atem-replicator/internal/poller"
	"github.com/tamzrod/atem-replicator/internal/recstatus"
	"github.com/tamzrod/atem-replicator/internal/status"
	"github.com/tamzrod/atem-replicator/internal/writer/ingest"
	wmodbus "github.com/tamzrod/atem-replicator/internal/writer/modbus"
)

// ---- fake register client ----

type fakeRegisterClient struct {
	writes []writeCall
	fail   error
}

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

func (f *fakeRegisterClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail != nil {
		return f.fail
	}
	f.writes = append(f.writes, writeCall{
		unitID: unitID,
		addr:   addr,
		regs:   append([]uint16(nil), regs...),
	})
	return nil
}

func (f *fakeRegisterClient) lastWrite(t *testing.T) writeCall {
	t.Helper()
	require.NotEmpty(t, f.writes)
	return f.writes[len(f.writes)-1]
}

type hookCall struct {
	kind, endpoint string
	ok             bool
}

func recordingHook(calls *[]hookCall) WriteHook {
	return func(kind, endpoint string, err error) {
		*calls = append(*calls, hookCall{kind, endpoint, err == nil})
	}
}

func pollWithRecording(code uint16) poller.PollResult {
	return poller.PollResult{
		DeviceID: "d1",
		Received: 1,
		Snapshot: recstatus.Snapshot{
			HasRecording: true,
			Recording:    recstatus.RecordingStatus{Code: code, Label: recstatus.MediaStatus(code)},
		},
	}
}

// ---- recorder writer ----

func TestWriter_WritesBlockAtTargetAddress(t *testing.T) {
	ep1 := &fakeRegisterClient{}
	ep2 := &fakeRegisterClient{}
	var hooks []hookCall

	w := New(Plan{
		DeviceID: "d1",
		Targets: []TargetEndpoint{
			{Endpoint: "ep1", UnitID: 1, Address: 100},
			{Endpoint: "ep2", UnitID: 4, Address: 0},
		},
	}, map[string]RegisterClient{"ep1": ep1, "ep2": ep2}, recordingHook(&hooks))

	require.NoError(t, w.Write(pollWithRecording(4)))

	got := ep1.lastWrite(t)
	assert.Equal(t, uint8(1), got.unitID)
	assert.Equal(t, uint16(100), got.addr)
	require.Len(t, got.regs, status.RecorderBlockSlots)
	assert.Equal(t, uint16(4), got.regs[status.SlotMediaCode])

	assert.Equal(t, uint8(4), ep2.lastWrite(t).unitID)
	assert.Equal(t, []hookCall{{KindRecorder, "ep1", true}, {KindRecorder, "ep2", true}}, hooks)
}

func TestWriter_SkipsUnchangedBlock(t *testing.T) {
	ep := &fakeRegisterClient{}
	w := New(Plan{Targets: []TargetEndpoint{{Endpoint: "ep1", UnitID: 1}}},
		map[string]RegisterClient{"ep1": ep}, nil)

	require.NoError(t, w.Write(pollWithRecording(2)))
	require.NoError(t, w.Write(pollWithRecording(2)))
	assert.Len(t, ep.writes, 1)

	require.NoError(t, w.Write(pollWithRecording(32)))
	assert.Len(t, ep.writes, 2)
}

func TestWriter_RetriesAfterFailure(t *testing.T) {
	ep := &fakeRegisterClient{fail: errors.New("refused")}
	w := New(Plan{Targets: []TargetEndpoint{{Endpoint: "ep1", UnitID: 1}}},
		map[string]RegisterClient{"ep1": ep}, nil)

	err := w.Write(pollWithRecording(2))
	require.ErrorContains(t, err, "ep=ep1")

	ep.fail = nil
	require.NoError(t, w.Write(pollWithRecording(2)))
	assert.Len(t, ep.writes, 1)
}

func TestWriter_FailedPollWritesNothing(t *testing.T) {
	ep := &fakeRegisterClient{}
	w := New(Plan{Targets: []TargetEndpoint{{Endpoint: "ep1"}}},
		map[string]RegisterClient{"ep1": ep}, nil)

	res := pollWithRecording(2)
	res.Err = poller.ErrNotConnected

	require.NoError(t, w.Write(res))
	assert.Empty(t, ep.writes)
}

func TestWriter_MissingClient(t *testing.T) {
	w := New(Plan{Targets: []TargetEndpoint{{Endpoint: "nowhere"}}}, nil, nil)
	require.ErrorContains(t, w.Write(pollWithRecording(2)), "missing client")
}

// ---- plan ----

func TestBuildPlan(t *testing.T) {
	slot := uint16(3)
	su := uint8(9)

	plan, err := BuildPlan(cfg.DeviceConfig{
		ID: "d1",
		Source: cfg.SourceConfig{
			StatusSlot: &slot,
			DeviceName: "REC-A",
		},
		Targets: []cfg.TargetConfig{
			{Endpoint: "ep1", UnitID: 1, Address: 50, StatusUnitID: &su},
			{Endpoint: "ep2", UnitID: 2},
		},
	}, cfg.StatusMemoryConfig{Endpoint: "sm", UnitID: 5})
	require.NoError(t, err)

	assert.Equal(t, []TargetEndpoint{
		{Endpoint: "ep1", UnitID: 1, Address: 50},
		{Endpoint: "ep2", UnitID: 2},
	}, plan.Targets)

	require.NotNil(t, plan.Status)
	assert.Equal(t, uint16(3), plan.Status.BaseSlot)
	assert.Equal(t, "REC-A", plan.Status.DeviceName)
	assert.Equal(t, []StatusSink{{Endpoint: "sm", UnitID: 5}, {Endpoint: "ep1", UnitID: 9}}, plan.Status.Sinks)

	_, err = BuildPlan(cfg.DeviceConfig{}, cfg.StatusMemoryConfig{})
	require.Error(t, err)
}

func TestBuildPlan_StatusDisabled(t *testing.T) {
	plan, err := BuildPlan(cfg.DeviceConfig{ID: "d1"}, cfg.StatusMemoryConfig{Endpoint: "sm"})
	require.NoError(t, err)
	assert.Nil(t, plan.Status)
}

func TestBuildEndpointClients_OnePerEndpoint(t *testing.T) {
	c := &cfg.Config{Replicator: cfg.ReplicatorConfig{
		StatusMemory: cfg.StatusMemoryConfig{Endpoint: "127.0.0.1:1502"},
		Devices: []cfg.DeviceConfig{
			{ID: "a", Targets: []cfg.TargetConfig{{Endpoint: "127.0.0.1:1502"}, {Endpoint: "127.0.0.1:2502"}}},
			{ID: "b", Targets: []cfg.TargetConfig{{Endpoint: "127.0.0.1:2502"}}},
		},
	}}

	c.Replicator.Devices[1].Targets[0].Protocol = cfg.ProtocolIngest
	c.Replicator.Devices[0].Targets[1].Protocol = cfg.ProtocolIngest

	clients, closeAll, err := BuildEndpointClients(c, nil, nil)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.IsType(t, &wmodbus.EndpointClient{}, clients["127.0.0.1:1502"])
	assert.IsType(t, &ingest.EndpointClient{}, clients["127.0.0.1:2502"])
	assert.NoError(t, closeAll())
}
