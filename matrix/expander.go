package matrix

import (
	"fmt"

	"keygopher/core"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/mcp23017"
)

// Expander drives matrix lines through an MCP23017 I2C port expander. It
// implements core.GPIODriver, with pins 0-7 on port A and 8-15 on port B,
// so a board can route some or all of its rows and columns off-chip.
type Expander struct {
	dev   *mcp23017.Device
	modes [mcp23017.PinCount]mcp23017.PinMode
}

// NewExpander opens the expander at address on bus. Every line starts as a
// plain input, the chip's reset state.
func NewExpander(bus drivers.I2C, address uint8) (*Expander, error) {
	if bus == nil {
		return nil, fmt.Errorf("expander: %w", core.ErrNilDriver)
	}
	dev, err := mcp23017.NewI2C(bus, address)
	if err != nil {
		return nil, fmt.Errorf("expander 0x%02x: %w: %w", address, core.ErrPinConfig, err)
	}
	e := &Expander{dev: dev}
	for i := range e.modes {
		e.modes[i] = mcp23017.Input
	}
	return e, nil
}

// ConfigureOutput configures a line as an output
func (e *Expander) ConfigureOutput(pin core.GPIOPin) error {
	return e.setMode(pin, mcp23017.Output)
}

// ConfigureInputPullUp configures a line as an input with the internal pull-up
func (e *Expander) ConfigureInputPullUp(pin core.GPIOPin) error {
	return e.setMode(pin, mcp23017.Input|mcp23017.Pullup)
}

func (e *Expander) setMode(pin core.GPIOPin, mode mcp23017.PinMode) error {
	if pin >= mcp23017.PinCount {
		return fmt.Errorf("expander pin %d: %w", pin, core.ErrPinConfig)
	}
	e.modes[pin] = mode
	return e.dev.SetModes(e.modes[:])
}

// SetPin drives an output line
func (e *Expander) SetPin(pin core.GPIOPin, value bool) error {
	if pin >= mcp23017.PinCount {
		return fmt.Errorf("expander pin %d: %w", pin, core.ErrPinConfig)
	}
	var pins, mask mcp23017.Pins
	pins.Set(int(pin), value)
	mask.High(int(pin))
	return e.dev.SetPins(pins, mask)
}

// GetPin samples a line
func (e *Expander) GetPin(pin core.GPIOPin) (bool, error) {
	if pin >= mcp23017.PinCount {
		return false, fmt.Errorf("expander pin %d: %w", pin, core.ErrPinConfig)
	}
	pins, err := e.dev.GetPins()
	if err != nil {
		return false, err
	}
	return pins.Get(int(pin)), nil
}
