//go:build stm32f103

package main

import (
	"machine"

	"keygopher/core"
)

// STMGPIODriver implements core.GPIODriver with TinyGo machine pins.
// core.GPIOPin numbers match machine.Pin on stm32 (port*16 + line).
type STMGPIODriver struct {
	// Track configured pins so reads of unconfigured lines are caught
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewSTMGPIODriver creates a new STM32 GPIO driver
func NewSTMGPIODriver() *STMGPIODriver {
	return &STMGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureOutput configures a pin as a push-pull output
func (d *STMGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinOutput)
}

// ConfigureInputPullUp configures a pin as an input with pull-up
func (d *STMGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinInputPullup)
}

func (d *STMGPIODriver) configure(pin core.GPIOPin, mode machine.PinMode) error {
	if _, exists := d.configuredPins[pin]; exists {
		// A matrix line configured twice means two boards' pins overlap
		return core.ErrPinConfig
	}
	// Blue Pill exposes PA0-PA15, PB0-PB15, PC13-PC15
	if pin >= 48 {
		return core.ErrPinConfig
	}

	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: mode})
	d.configuredPins[pin] = machinePin
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (d *STMGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return core.ErrPinConfig
	}
	machinePin.Set(value)
	return nil
}

// GetPin reads the current pin state
func (d *STMGPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return false, core.ErrPinConfig
	}
	return machinePin.Get(), nil
}
