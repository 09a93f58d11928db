package core

import (
	"strings"
	"testing"
)

func TestTraceRing(t *testing.T) {
	var clock Clock
	trace := NewTrace(&clock)

	for i := uint32(0); i < TraceRingSize+4; i++ {
		clock.Advance()
		trace.Record(EvtReportSent, i, 0)
	}

	events := trace.Events(nil)
	if len(events) != TraceRingSize {
		t.Fatalf("Expected %d events, got %d", TraceRingSize, len(events))
	}
	if events[0].Value1 != 4 {
		t.Errorf("Expected oldest event value 4, got %d", events[0].Value1)
	}
	last := events[len(events)-1]
	if last.Value1 != TraceRingSize+3 || last.Clock != TraceRingSize+4 {
		t.Errorf("Unexpected newest event %+v", last)
	}

	trace.Clear()
	if n := len(trace.Events(nil)); n != 0 {
		t.Errorf("Expected empty ring after Clear, got %d", n)
	}
}

func TestTraceDisabledAndNil(t *testing.T) {
	var nilTrace *Trace
	nilTrace.Record(EvtHalt, 0, 0) // must not panic

	trace := NewTrace(nil)
	trace.SetEnabled(false)
	trace.Record(EvtHalt, 0, 0)
	if trace.Count(EvtHalt) != 0 {
		t.Error("Disabled trace recorded an event")
	}
}

func TestTraceDump(t *testing.T) {
	trace := NewTrace(nil)
	var lines []string
	trace.SetWriter(func(s string) { lines = append(lines, s) })

	trace.Record(EvtWriteRetry, 16, 0)
	trace.Record(EvtHoldTap, 4<<8|4, 1)
	trace.Dump()

	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[1], "WRITE_RETRY") || !strings.Contains(lines[1], "v1=16") {
		t.Errorf("Unexpected line %q", lines[1])
	}
	if !strings.Contains(lines[2], "HOLD_TAP") || !strings.Contains(lines[2], "v1=1028") {
		t.Errorf("Unexpected line %q", lines[2])
	}
}
