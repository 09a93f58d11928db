// Package usb enumerates the keyboard as a USB device and defines the
// contract between the firmware and the device stack.
package usb

import (
	"github.com/ardnew/softusb/device"
	"github.com/ardnew/softusb/pkg"
)

// ErrNotConfigured indicates the host has not configured the device yet.
var ErrNotConfigured = pkg.ErrNotConfigured

// Class is a USB class driver serviced by the device's poll.
type Class interface {
	// Poll processes class events latched by the last device poll.
	Poll()
}

// OutputHandler is implemented by classes that accept OUT reports from the
// host.
type OutputHandler interface {
	HandleOutputReport(data []byte)
}

// SetupHandler is implemented by classes that answer class requests and
// standard requests addressed to their interface. data is the OUT data
// stage. The returned slice is the IN data stage; ok false stalls.
type SetupHandler interface {
	HandleSetup(setup *device.SetupPacket, data []byte) (resp []byte, ok bool)
}

// Device is the device-level state machine: bus reset, enumeration and
// control transfers on endpoint 0.
type Device interface {
	// Poll services the controller once and reports whether class has
	// events to process.
	Poll(class Class) bool
}

// Endpoint is an interrupt IN endpoint.
type Endpoint interface {
	// Write queues p for transmission and returns the number of bytes
	// accepted. 0 with a nil error means the endpoint is still busy with a
	// previous packet.
	Write(p []byte) (int, error)
}
