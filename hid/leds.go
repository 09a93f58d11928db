package hid

import (
	"fmt"

	"keygopher/core"
)

// LEDs mirrors the host's Caps Lock state onto a GPIO line.
type LEDs struct {
	gpio      core.GPIODriver
	pin       core.GPIOPin
	activeLow bool
	capsLock  bool
	trace     *core.Trace
}

// NewLEDs configures pin as an output and turns the indicator off.
func NewLEDs(gpio core.GPIODriver, pin core.GPIOPin, activeLow bool) (*LEDs, error) {
	if gpio == nil {
		return nil, fmt.Errorf("leds: %w", core.ErrNilDriver)
	}
	if err := gpio.ConfigureOutput(pin); err != nil {
		return nil, fmt.Errorf("leds: pin %d: %w: %w", pin, core.ErrPinConfig, err)
	}
	l := &LEDs{gpio: gpio, pin: pin, activeLow: activeLow}
	l.drive(false)
	return l, nil
}

// SetTrace records LED changes into t
func (l *LEDs) SetTrace(t *core.Trace) {
	l.trace = t
}

// SetCapsLock drives the indicator. Writes to a configured output pin
// cannot fail on the MCU.
func (l *LEDs) SetCapsLock(on bool) {
	if on == l.capsLock {
		return
	}
	l.capsLock = on
	l.drive(on)
	var v uint32
	if on {
		v = 1
	}
	l.trace.Record(core.EvtCapsLock, v, 0)
}

// CapsLock returns the last state the host reported
func (l *LEDs) CapsLock() bool {
	return l.capsLock
}

func (l *LEDs) drive(on bool) {
	_ = l.gpio.SetPin(l.pin, on != l.activeLow)
}
