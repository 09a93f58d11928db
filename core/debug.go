package core

// TraceWriter is a function type for writing rendered trace lines
type TraceWriter func(string)

// TraceEvent captures a timing-critical event for post-mortem analysis
type TraceEvent struct {
	EventType uint8  // Event type code
	Clock     uint32 // Tick count at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtTickOverrun = 1 // tick triggered while the previous one was outstanding
	EvtReportSent  = 2 // report written; v1=modifiers, v2=first keycode
	EvtWriteRetry  = 3 // endpoint accepted 0 bytes; v1=attempt
	EvtWriteError  = 4 // endpoint write failed
	EvtHoldTap     = 5 // hold-tap resolved; v1=row<<8|col, v2=1 hold, 0 tap
	EvtCapsLock    = 6 // host LED report; v1=1 on
	EvtHalt        = 7 // fatal error, system halted
)

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

// Trace is a fixed ring of the most recent timing events. Recording never
// blocks and never allocates; rendering only happens on Dump.
type Trace struct {
	clock   *Clock
	ring    [TraceRingSize]TraceEvent
	head    uint8
	enabled bool
	writer  TraceWriter
}

// NewTrace creates an enabled trace stamped by clock. clock may be nil.
func NewTrace(clock *Clock) *Trace {
	return &Trace{clock: clock, enabled: true}
}

// SetWriter sets the platform-specific output function used by Dump
// This allows platforms to redirect trace output to UART, semihosting, etc.
func (t *Trace) SetWriter(w TraceWriter) {
	t.writer = w
}

// SetEnabled enables or disables capture
func (t *Trace) SetEnabled(enabled bool) {
	t.enabled = enabled
}

// Record captures an event in the ring buffer. Safe from any priority.
func (t *Trace) Record(eventType uint8, value1, value2 uint32) {
	if t == nil {
		return
	}
	t.record(eventType, value1, value2)
}

func (t *Trace) record(eventType uint8, value1, value2 uint32) {
	if !t.enabled {
		return
	}
	var clock uint32
	if t.clock != nil {
		clock = t.clock.Now()
	}
	state := disableInterrupts()
	idx := t.head
	t.ring[idx] = TraceEvent{
		EventType: eventType,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	t.head = (idx + 1) % TraceRingSize
	restoreInterrupts(state)
}

// Events copies the recorded events, oldest first, into dst and returns it
func (t *Trace) Events(dst []TraceEvent) []TraceEvent {
	start := t.head
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := t.ring[(start+i)%TraceRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		dst = append(dst, evt)
	}
	return dst
}

// Count returns how many recorded events have the given type
func (t *Trace) Count(eventType uint8) int {
	n := 0
	for i := range t.ring {
		if t.ring[i].EventType == eventType {
			n++
		}
	}
	return n
}

// Dump outputs the ring through the writer, oldest first
func (t *Trace) Dump() {
	if t.writer == nil {
		return
	}

	t.writer("[TRACE] === Trace Ring Dump ===")
	start := t.head
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := &t.ring[(start+i)%TraceRingSize]
		if evt.EventType == 0 {
			continue
		}
		t.writer("[TRACE] " + eventName(evt.EventType) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	t.writer("[TRACE] === End Dump ===")
}

// Clear empties the ring
func (t *Trace) Clear() {
	for i := range t.ring {
		t.ring[i] = TraceEvent{}
	}
	t.head = 0
}

func eventName(eventType uint8) string {
	switch eventType {
	case EvtTickOverrun:
		return "TICK_OVERRUN!"
	case EvtReportSent:
		return "REPORT"
	case EvtWriteRetry:
		return "WRITE_RETRY"
	case EvtWriteError:
		return "WRITE_ERROR"
	case EvtHoldTap:
		return "HOLD_TAP"
	case EvtCapsLock:
		return "CAPS_LOCK"
	case EvtHalt:
		return "HALT!"
	default:
		return "UNKNOWN"
	}
}
