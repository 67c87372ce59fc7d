// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tamzrod/atem-replicator/internal/poller"
	"github.com/tamzrod/atem-replicator/internal/status"
)

type recorderWriter struct {
	plan    Plan
	clients map[string]RegisterClient
	hook    WriteHook

	// last successfully written block per target index; nil => rewrite
	last [][]uint16
}

// New builds the recorder block writer for one device.
// hook may be nil.
func New(plan Plan, clients map[string]RegisterClient, hook WriteHook) Writer {
	if hook == nil {
		hook = func(string, string, error) {}
	}
	return &recorderWriter{
		plan:    plan,
		clients: clients,
		hook:    hook,
		last:    make([][]uint16, len(plan.Targets)),
	}
}

// Write mirrors the decoded recorder status into every target.
// A target is written only when its block differs from what it last
// accepted; a failed target is rewritten on the next call.
// Failed polls write nothing: the health block reports them.
func (w *recorderWriter) Write(res poller.PollResult) error {
	if res.Err != nil {
		return nil
	}

	regs := status.EncodeRecorder(res.Snapshot)

	var errs []string

	for i, tgt := range w.plan.Targets {
		if slices.Equal(w.last[i], regs) {
			continue
		}

		cli := w.clients[tgt.Endpoint]
		if cli == nil {
			errs = append(errs, fmt.Sprintf(
				"writer: missing client for endpoint %s",
				tgt.Endpoint,
			))
			continue
		}

		err := cli.WriteRegisters(tgt.UnitID, tgt.Address, regs)
		w.hook(KindRecorder, tgt.Endpoint, err)

		if err != nil {
			w.last[i] = nil
			errs = append(errs, fmt.Sprintf(
				"writer: ep=%s unit=%d addr=%d err=%v",
				tgt.Endpoint, tgt.UnitID, tgt.Address, err,
			))
			continue
		}
		w.last[i] = regs
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}
