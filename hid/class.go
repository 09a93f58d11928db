package hid

import (
	"github.com/ardnew/softusb/device"
	softhid "github.com/ardnew/softusb/device/class/hid"

	"keygopher/usb"
)

// CapsLockSink receives the host's Caps Lock LED state.
type CapsLockSink interface {
	SetCapsLock(on bool)
}

// Keyboard is the boot keyboard HID class. It holds the report the host
// reads on GET_REPORT, writes input reports to the interrupt IN endpoint and
// forwards LED output reports to a sink.
//
// Keyboard is not safe for concurrent use; the firmware keeps it beside its
// usb.Device in one core.Shared resource.
type Keyboard struct {
	ep   usb.Endpoint
	leds CapsLockSink

	report   Report
	protocol uint8
	idleRate uint8 // Idle rate in 4ms units (0 = infinite)

	ledState   uint8
	ledPending bool

	hidDesc     [softhid.HIDDescriptorSize]byte
	responseBuf [ReportSize]byte
}

// NewKeyboard creates the class. ep may be nil until the host configures the
// device; leds may be nil when the board has no indicator.
func NewKeyboard(ep usb.Endpoint, leds CapsLockSink) *Keyboard {
	k := &Keyboard{ep: ep, leds: leds, protocol: softhid.ProtocolReport}
	hd := hidDescriptor()
	hd.MarshalTo(k.hidDesc[:])
	return k
}

// SetEndpoint attaches the interrupt IN endpoint once configured
func (k *Keyboard) SetEndpoint(ep usb.Endpoint) {
	k.ep = ep
}

// SetKeyboardReport replaces the current report and reports whether it
// changed.
func (k *Keyboard) SetKeyboardReport(r Report) bool {
	if r == k.report {
		return false
	}
	k.report = r
	return true
}

// Report returns the current report
func (k *Keyboard) Report() Report {
	return k.report
}

// Write sends p on the interrupt IN endpoint. It returns 0 bytes and no
// error while the endpoint is busy.
func (k *Keyboard) Write(p []byte) (int, error) {
	if k.ep == nil {
		return 0, usb.ErrNotConfigured
	}
	return k.ep.Write(p)
}

// HandleOutputReport latches an LED output report from the host. Some
// stacks prefix the report with its ID; only the last byte carries LEDs.
func (k *Keyboard) HandleOutputReport(data []byte) {
	if len(data) == 0 {
		return
	}
	k.ledState = data[len(data)-1]
	k.ledPending = true
}

// Poll delivers latched output reports to the LED sink.
func (k *Keyboard) Poll() {
	if !k.ledPending {
		return
	}
	k.ledPending = false
	if k.leds != nil {
		k.leds.SetCapsLock(k.ledState&softhid.LEDCapsLock != 0)
	}
}

// LEDState returns the last LED bitmask received from the host
func (k *Keyboard) LEDState() uint8 {
	return k.ledState
}

// Protocol returns the current protocol (boot or report)
func (k *Keyboard) Protocol() uint8 {
	return k.protocol
}

// IdleRate returns the current idle rate
func (k *Keyboard) IdleRate() uint8 {
	return k.idleRate
}

// HandleSetup answers requests addressed to the keyboard interface: the
// HID and report descriptors, and the HID class requests. It returns the
// data stage for device-to-host requests and whether the request was
// handled. The returned slice may alias internal storage.
func (k *Keyboard) HandleSetup(setup *device.SetupPacket, data []byte) ([]byte, bool) {
	if setup.IsInterfaceRecipient() && setup.InterfaceNumber() != InterfaceNumber {
		return nil, false
	}
	if setup.IsStandard() {
		if setup.Request != device.RequestGetDescriptor {
			return nil, false
		}
		switch setup.DescriptorType() {
		case softhid.DescriptorTypeHID:
			return k.hidDesc[:], true
		case softhid.DescriptorTypeReport:
			return softhid.KeyboardReportDescriptor, true
		}
		return nil, false
	}
	if !setup.IsClass() {
		return nil, false
	}

	switch setup.Request {
	case softhid.RequestGetReport:
		if uint8(setup.Value>>8) != softhid.ReportTypeInput {
			return nil, false
		}
		k.responseBuf = k.report
		return k.responseBuf[:min(int(setup.Length), ReportSize)], true

	case softhid.RequestSetReport:
		if uint8(setup.Value>>8) != softhid.ReportTypeOutput {
			return nil, false
		}
		k.HandleOutputReport(data)
		return nil, true

	case softhid.RequestGetIdle:
		k.responseBuf[0] = k.idleRate
		return k.responseBuf[:1], true

	case softhid.RequestSetIdle:
		k.idleRate = uint8(setup.Value >> 8)
		return nil, true

	case softhid.RequestGetProtocol:
		k.responseBuf[0] = k.protocol
		return k.responseBuf[:1], true

	case softhid.RequestSetProtocol:
		k.protocol = uint8(setup.Value & 0xFF)
		return nil, true

	default:
		return nil, false
	}
}
