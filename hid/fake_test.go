package hid

import (
	"errors"

	"keygopher/core"
	"keygopher/usb"
)

type fakeGPIO struct {
	outputs map[core.GPIOPin]bool
	levels  map[core.GPIOPin]bool
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		outputs: make(map[core.GPIOPin]bool),
		levels:  make(map[core.GPIOPin]bool),
	}
}

func (f *fakeGPIO) ConfigureOutput(pin core.GPIOPin) error {
	f.outputs[pin] = true
	return nil
}

func (f *fakeGPIO) ConfigureInputPullUp(pin core.GPIOPin) error {
	f.levels[pin] = true
	return nil
}

func (f *fakeGPIO) SetPin(pin core.GPIOPin, value bool) error {
	f.levels[pin] = value
	return nil
}

func (f *fakeGPIO) GetPin(pin core.GPIOPin) (bool, error) {
	return f.levels[pin], nil
}

// fakeEndpoint accepts a packet only when it is not busy. onWrite runs
// before the busy check and may change it, standing in for the controller.
type fakeEndpoint struct {
	busy    bool
	err     error
	packets [][]byte
	calls   int
	onWrite func(calls int)
}

func (e *fakeEndpoint) Write(p []byte) (int, error) {
	e.calls++
	if e.onWrite != nil {
		e.onWrite(e.calls)
	}
	if e.err != nil {
		return 0, e.err
	}
	if e.busy {
		return 0, nil
	}
	e.packets = append(e.packets, append([]byte(nil), p...))
	e.busy = true
	return len(p), nil
}

// fakeDevice completes the in-flight IN transfer on each poll and reports
// class events when an output report was queued.
type fakeDevice struct {
	ep     *fakeEndpoint
	polls  int
	output []byte
}

func (d *fakeDevice) Poll(class usb.Class) bool {
	d.polls++
	d.ep.busy = false
	if d.output == nil {
		return false
	}
	if h, ok := class.(usb.OutputHandler); ok {
		h.HandleOutputReport(d.output)
	}
	d.output = nil
	return true
}

var errBus = errors.New("bus fault")
