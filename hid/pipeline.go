package hid

import (
	"keygopher/core"
	"keygopher/keymap"
	"keygopher/usb"
)

// USB is the device stack and keyboard class. Both priorities touch them and
// they are only ever locked together, so neither can be seen mid-update
// relative to the other.
type USB struct {
	Device usb.Device
	Class  *Keyboard
}

// Poll services the device once and lets the class handle what it latched.
func (u *USB) Poll() {
	if u.Device.Poll(u.Class) {
		u.Class.Poll()
	}
}

// Pipeline turns resolved keycodes into reports on the IN endpoint.
type Pipeline struct {
	usb   *core.Shared[USB]
	trace *core.Trace

	sent   Report // last report the endpoint accepted
	writes uint32
}

// NewPipeline creates a pipeline writing through the shared USB resource.
// trace may be nil.
func NewPipeline(shared *core.Shared[USB], trace *core.Trace) *Pipeline {
	return &Pipeline{usb: shared, trace: trace}
}

// Send builds the report for codes and writes it if it differs from the
// last one the endpoint accepted. While the endpoint accepts 0 bytes the
// write is retried, releasing the lock between attempts so USB interrupts
// can drain it. There is no retry limit. An endpoint error leaves the report
// unsent so the next Send tries again. Send reports whether a report was
// written.
func (p *Pipeline) Send(codes []keymap.KeyCode) bool {
	report := NewReport(codes)
	if report == p.sent {
		return false
	}

	first := true
	for attempt := uint32(1); ; attempt++ {
		var n int
		var err error
		p.usb.Lock(func(u *USB) {
			if first {
				u.Class.SetKeyboardReport(report)
				first = false
			}
			n, err = u.Class.Write(report[:])
		})
		p.writes++

		switch {
		case err != nil:
			p.trace.Record(core.EvtWriteError, attempt, 0)
			return false
		case n > 0:
			p.sent = report
			p.trace.Record(core.EvtReportSent, uint32(report[0]), uint32(report[2]))
			return true
		case attempt&(attempt-1) == 0:
			// powers of two only, so a stalled host cannot flush the ring
			p.trace.Record(core.EvtWriteRetry, attempt, 0)
		}
	}
}

// Sent returns the last report the endpoint accepted
func (p *Pipeline) Sent() Report {
	return p.sent
}

// Writes returns the number of endpoint write attempts so far
func (p *Pipeline) Writes() uint32 {
	return p.writes
}
