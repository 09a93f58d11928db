package usb

import (
	"context"

	"github.com/ardnew/softusb/device"
	"github.com/ardnew/softusb/device/hal"
)

// Events are controller conditions latched by the USB interrupt handler.
type Events uint8

const (
	EventReset       Events = 1 << iota // bus reset, back at address 0
	EventSetup                          // SETUP packet waiting on endpoint 0
	EventControlOut                     // OUT data or status stage on endpoint 0
	EventTransmitted                    // IN packet on a data endpoint was taken by the host
)

// Controller is a USB device peripheral driven from interrupts. The softusb
// operations must not block past the stage an event reported: ReadSetup
// after EventSetup, ReadEP0 after EventControlOut. WriteEP0 and Write queue
// data and return; Write accepts 0 bytes while its previous packet is in
// flight. SetAddress takes effect once the current status stage completes.
type Controller interface {
	hal.DeviceHAL

	// Events returns and clears the events latched since the last call.
	Events() Events
}

// MaxControlOut bounds the OUT data stage of a control request.
const MaxControlOut = 64

// Descriptors is what the device reports during enumeration.
type Descriptors struct {
	Device []byte
	// Configuration holds the configuration descriptor followed by every
	// interface, class and endpoint descriptor.
	Configuration []byte
	// Strings are indexed by descriptor index; 0 is the language table.
	Strings [][]byte
	// Endpoints are opened on SET_CONFIGURATION
	Endpoints []hal.EndpointConfig
}

// Stack enumerates the device on endpoint 0 and serves the class's IN
// endpoint. Requests to the class interface, and class requests, go to the
// class first when it implements SetupHandler.
//
// Stack is not safe for concurrent use. The firmware locks it with its class.
type Stack struct {
	ctl  Controller
	ctx  context.Context
	desc Descriptors
	in   uint8

	state   device.State
	config  uint8
	address uint8

	setup      device.SetupPacket
	dataOut    bool // setup waits for its OUT data stage
	setAddress bool // apply address after the status stage
	buf        [MaxControlOut]byte
}

// NewStack creates a device stack on ctl. in is the address of the
// interrupt IN endpoint that Write sends on.
func NewStack(ctl Controller, desc Descriptors, in uint8) *Stack {
	return &Stack{
		ctl:   ctl,
		ctx:   context.Background(),
		desc:  desc,
		in:    in,
		state: device.StatePowered,
	}
}

// Poll handles the events latched since the last poll. It reports whether a
// request went to the class.
func (s *Stack) Poll(class Class) bool {
	ev := s.ctl.Events()
	handled := false

	if ev&EventReset != 0 {
		s.reset()
	}
	if ev&EventSetup != 0 {
		var pkt hal.SetupPacket
		if err := s.ctl.ReadSetup(s.ctx, &pkt); err == nil {
			s.setup = device.SetupPacket(pkt)
			handled = s.handleSetup(class)
		}
	}
	if ev&EventControlOut != 0 {
		handled = s.controlOut(class) || handled
	}
	return handled
}

// Write sends p on the IN endpoint. It fails with ErrNotConfigured until the
// host selects the configuration.
func (s *Stack) Write(p []byte) (int, error) {
	if s.state != device.StateConfigured {
		return 0, ErrNotConfigured
	}
	return s.ctl.Write(s.ctx, s.in, p)
}

// State returns the USB device state
func (s *Stack) State() device.State {
	return s.state
}

// Address returns the address the host assigned
func (s *Stack) Address() uint8 {
	return s.address
}

func (s *Stack) reset() {
	s.state = device.StateDefault
	s.config = 0
	s.address = 0
	s.dataOut = false
	s.setAddress = false
	s.ctl.ConfigureEndpoints(nil)
}

func (s *Stack) handleSetup(class Class) bool {
	s.dataOut = false
	if s.setup.IsHostToDevice() && s.setup.Length > 0 {
		if int(s.setup.Length) > len(s.buf) {
			s.ctl.StallEP0()
			return false
		}
		s.dataOut = true
		return false
	}
	return s.dispatch(class, nil)
}

func (s *Stack) controlOut(class Class) bool {
	if !s.dataOut {
		// Status stage of an IN request
		s.ctl.ReadEP0(s.ctx, nil)
		return false
	}
	s.dataOut = false
	n, err := s.ctl.ReadEP0(s.ctx, s.buf[:s.setup.Length])
	if err != nil {
		s.ctl.StallEP0()
		return false
	}
	return s.dispatch(class, s.buf[:n])
}

// dispatch answers the current request and reports whether the class took it
func (s *Stack) dispatch(class Class, data []byte) bool {
	var resp []byte
	var ok, byClass bool

	if !s.setup.IsStandard() || s.setup.IsInterfaceRecipient() {
		if h, is := class.(SetupHandler); is {
			resp, ok = h.HandleSetup(&s.setup, data)
			byClass = ok
		}
	}
	if !ok && s.setup.IsStandard() {
		resp, ok = s.standard()
	}
	if !ok {
		s.ctl.StallEP0()
		return false
	}

	if s.setup.IsDeviceToHost() {
		if len(resp) > int(s.setup.Length) {
			resp = resp[:s.setup.Length]
		}
		if err := s.ctl.WriteEP0(s.ctx, resp); err != nil {
			s.ctl.StallEP0()
		}
		return byClass
	}

	s.ctl.AckEP0()
	if s.setAddress {
		s.setAddress = false
		s.ctl.SetAddress(s.address)
	}
	return byClass
}

// standard handles chapter 9 requests to the device and its endpoints
func (s *Stack) standard() ([]byte, bool) {
	switch s.setup.Request {
	case device.RequestGetDescriptor:
		return s.descriptor()

	case device.RequestSetAddress:
		s.address = uint8(s.setup.Value & 0x7F)
		s.setAddress = true
		if s.address == 0 {
			s.state = device.StateDefault
		} else {
			s.state = device.StateAddress
		}
		return nil, true

	case device.RequestGetConfiguration:
		s.buf[0] = s.config
		return s.buf[:1], true

	case device.RequestSetConfiguration:
		return nil, s.configure(uint8(s.setup.Value))

	case device.RequestGetStatus:
		s.buf[0], s.buf[1] = 0, 0
		return s.buf[:2], true

	case device.RequestClearFeature, device.RequestSetFeature:
		if !s.setup.IsEndpointRecipient() || s.setup.Value != device.FeatureEndpointHalt {
			return nil, false
		}
		if s.setup.Request == device.RequestSetFeature {
			s.ctl.Stall(s.setup.EndpointAddress())
		} else {
			s.ctl.ClearStall(s.setup.EndpointAddress())
		}
		return nil, true

	case device.RequestGetInterface:
		s.buf[0] = 0
		return s.buf[:1], s.state == device.StateConfigured

	case device.RequestSetInterface:
		return nil, s.state == device.StateConfigured && s.setup.Value == 0
	}
	return nil, false
}

func (s *Stack) descriptor() ([]byte, bool) {
	switch s.setup.DescriptorType() {
	case device.DescriptorTypeDevice:
		return s.desc.Device, true
	case device.DescriptorTypeConfiguration:
		return s.desc.Configuration, true
	case device.DescriptorTypeString:
		i := int(s.setup.DescriptorIndex())
		if i < len(s.desc.Strings) {
			return s.desc.Strings[i], true
		}
	}
	return nil, false
}

// configure applies SET_CONFIGURATION. Only the descriptor's configuration
// value and 0 are accepted.
func (s *Stack) configure(value uint8) bool {
	if s.state != device.StateAddress && s.state != device.StateConfigured {
		return false
	}
	switch {
	case value == 0:
		s.ctl.ConfigureEndpoints(nil)
		s.config = 0
		s.state = device.StateAddress
		return true
	case len(s.desc.Configuration) > 5 && value == s.desc.Configuration[5]:
		if err := s.ctl.ConfigureEndpoints(s.desc.Endpoints); err != nil {
			return false
		}
		s.config = value
		s.state = device.StateConfigured
		return true
	}
	return false
}
