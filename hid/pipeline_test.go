package hid

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"keygopher/core"
	"keygopher/keymap"
)

type rig struct {
	sched    *core.Scheduler
	trace    *core.Trace
	ep       *fakeEndpoint
	dev      *fakeDevice
	shared   *core.Shared[USB]
	pipeline *Pipeline
	usbTask  core.TaskID
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{trace: core.NewTrace(nil)}
	r.sched = core.NewScheduler(r.trace)
	r.ep = &fakeEndpoint{}
	r.dev = &fakeDevice{ep: r.ep}
	r.shared = core.NewShared(r.sched, core.PriorityUSB, USB{
		Device: r.dev,
		Class:  NewKeyboard(r.ep, nil),
	})
	r.pipeline = NewPipeline(r.shared, r.trace)

	var err error
	r.usbTask, err = r.sched.Bind("usb", core.PriorityUSB, func() {
		r.shared.Lock(func(u *USB) { u.Poll() })
	})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	return r
}

func TestPipelineSkipsUnchangedReport(t *testing.T) {
	r := newRig(t)

	if r.pipeline.Send(nil) {
		t.Error("Empty report equals the initial state and must not be written")
	}
	if r.ep.calls != 0 {
		t.Errorf("Expected no endpoint writes, got %d", r.ep.calls)
	}

	codes := []keymap.KeyCode{keymap.A}
	if !r.pipeline.Send(codes) {
		t.Fatal("Changed report not written")
	}
	r.ep.busy = false
	if r.pipeline.Send(codes) {
		t.Error("Identical report written twice")
	}
	if len(r.ep.packets) != 1 {
		t.Errorf("Expected 1 packet, got %d", len(r.ep.packets))
	}
}

func TestPipelineRetriesWhileBusy(t *testing.T) {
	r := newRig(t)
	r.ep.busy = true

	// The controller finishes the previous transfer during the third
	// attempt; the USB task must stay pending until the lock is released.
	r.ep.onWrite = func(calls int) {
		if calls == 3 {
			r.sched.Trigger(r.usbTask)
			if !r.sched.Pending(r.usbTask) {
				t.Error("USB task ran while the USB resource was locked")
			}
		}
	}

	if !r.pipeline.Send([]keymap.KeyCode{keymap.LShift, keymap.B}) {
		t.Fatal("Report not written")
	}
	if r.ep.calls != 4 {
		t.Errorf("Expected 4 write attempts, got %d", r.ep.calls)
	}
	if r.pipeline.Writes() != 4 {
		t.Errorf("Expected Writes()=4, got %d", r.pipeline.Writes())
	}
	if r.dev.polls != 1 {
		t.Errorf("Expected 1 device poll, got %d", r.dev.polls)
	}

	want := []byte{0x02, 0, byte(keymap.B), 0, 0, 0, 0, 0}
	if diff := cmp.Diff([][]byte{want}, r.ep.packets); diff != "" {
		t.Errorf("packets mismatch (-want +got):\n%s", diff)
	}
	// Attempts 1 and 2 are powers of two, attempt 3 is not
	if n := r.trace.Count(core.EvtWriteRetry); n != 2 {
		t.Errorf("Expected 2 retry trace events, got %d", n)
	}
}

func TestPipelineErrorLeavesReportUnsent(t *testing.T) {
	r := newRig(t)
	r.ep.err = errBus

	codes := []keymap.KeyCode{keymap.C}
	if r.pipeline.Send(codes) {
		t.Error("Send should fail on endpoint error")
	}
	if r.pipeline.Sent() != (Report{}) {
		t.Error("Failed report must not be recorded as sent")
	}
	if r.trace.Count(core.EvtWriteError) != 1 {
		t.Error("Expected a write error trace event")
	}

	r.ep.err = nil
	if !r.pipeline.Send(codes) {
		t.Error("Report should be written on the next attempt")
	}
	if r.pipeline.Sent() != NewReport(codes) {
		t.Errorf("Sent() = %v", r.pipeline.Sent())
	}
}

func TestPipelineUpdatesClassReport(t *testing.T) {
	r := newRig(t)
	codes := []keymap.KeyCode{keymap.RCtrl, keymap.Z}
	r.pipeline.Send(codes)

	var got Report
	r.shared.Lock(func(u *USB) { got = u.Class.Report() })
	if got != NewReport(codes) {
		t.Errorf("Class report %v, want %v", got, NewReport(codes))
	}
}
