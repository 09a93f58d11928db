package core

// GPIOPin identifies a hardware GPIO line. Its meaning is driver specific:
// an MCU pin number for the target driver, an expander line for
// matrix.Expander.
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that the matrix scanner and the
// LED controller use. Platform-specific implementations handle the hardware.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a push-pull digital output
	// Returns error if pin is invalid
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
	ConfigureInputPullUp(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads the current pin state
	GetPin(pin GPIOPin) (bool, error)
}
