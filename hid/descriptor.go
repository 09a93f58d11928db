package hid

import (
	"github.com/ardnew/softusb/device"
	softhid "github.com/ardnew/softusb/device/class/hid"
	"github.com/ardnew/softusb/device/hal"

	"keygopher/usb"
)

// Keyboard interface and endpoint numbering.
const (
	InterfaceNumber = 0
	EndpointIn      = 0x81

	// PollInterval is the interrupt IN interval in frames (1 ms), one scan tick
	PollInterval = 1

	configurationValue = 1
	maxPower           = 50 // 100 mA in 2 mA units
	maxPacketSize0     = 64
	transferInterrupt  = 0x03
	hidVersion         = 0x0111

	configurationSize = device.ConfigurationDescriptorSize +
		device.InterfaceDescriptorSize +
		softhid.HIDDescriptorSize +
		device.EndpointDescriptorSize
)

// DeviceInfo identifies the keyboard on the bus.
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	Release      uint16 // BCD
	Manufacturer string
	Product      string
	Serial       string
}

// hidDescriptor describes the boot keyboard report descriptor
func hidDescriptor() softhid.HIDDescriptor {
	return softhid.HIDDescriptor{
		Length:         softhid.HIDDescriptorSize,
		DescriptorType: softhid.DescriptorTypeHID,
		HIDVersion:     hidVersion,
		CountryCode:    softhid.CountryNone,
		NumDescriptors: 1,
		ReportDescType: softhid.DescriptorTypeReport,
		ReportDescLen:  uint16(len(softhid.KeyboardReportDescriptor)),
	}
}

// Descriptors builds the enumeration data of a boot keyboard with a single
// interrupt IN endpoint. LED reports arrive through SET_REPORT on endpoint 0.
// It allocates and is meant to run once at init.
func Descriptors(info DeviceInfo) usb.Descriptors {
	dev := make([]byte, device.DeviceDescriptorSize)
	(&device.DeviceDescriptor{
		USBVersion:        0x0200,
		MaxPacketSize0:    maxPacketSize0,
		VendorID:          info.VendorID,
		ProductID:         info.ProductID,
		DeviceVersion:     info.Release,
		ManufacturerIndex: 1,
		ProductIndex:      2,
		SerialNumberIndex: 3,
		NumConfigurations: 1,
	}).MarshalTo(dev)

	ep := hal.EndpointConfig{
		Address:       EndpointIn,
		Attributes:    transferInterrupt,
		MaxPacketSize: ReportSize,
		Interval:      PollInterval,
	}

	cfg := make([]byte, configurationSize)
	n := (&device.ConfigurationDescriptor{
		TotalLength:        configurationSize,
		NumInterfaces:      1,
		ConfigurationValue: configurationValue,
		Attributes:         device.ConfigAttrBusPowered,
		MaxPower:           maxPower,
	}).MarshalTo(cfg)
	n += (&device.InterfaceDescriptor{
		InterfaceNumber:   InterfaceNumber,
		NumEndpoints:      1,
		InterfaceClass:    softhid.ClassHID,
		InterfaceSubClass: softhid.SubclassBoot,
		InterfaceProtocol: softhid.ProtocolKeyboard,
	}).MarshalTo(cfg[n:])
	hd := hidDescriptor()
	n += hd.MarshalTo(cfg[n:])
	(&device.EndpointDescriptor{
		EndpointAddress: ep.Address,
		Attributes:      ep.Attributes,
		MaxPacketSize:   ep.MaxPacketSize,
		Interval:        ep.Interval,
	}).MarshalTo(cfg[n:])

	strs := make([][]byte, 4)
	strs[0] = make([]byte, 4)
	device.LanguageDescriptorTo(strs[0], device.LangIDUSEnglish)
	for i, s := range []string{info.Manufacturer, info.Product, info.Serial} {
		buf := make([]byte, 2+2*len(s))
		strs[i+1] = buf[:device.StringDescriptorTo(buf, s)]
	}

	return usb.Descriptors{
		Device:        dev,
		Configuration: cfg,
		Strings:       strs,
		Endpoints:     []hal.EndpointConfig{ep},
	}
}
