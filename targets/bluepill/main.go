//go:build stm32f103

// Command bluepill is the keyboard firmware for an STM32F103 "Blue Pill".
// Build the 60% board with `tinygo build -target=bluepill` and the 75% board
// with `-tags kb75` added.
package main

import (
	"context"
	"device/arm"
	"runtime/volatile"
	"unsafe"

	"keygopher/core"
	"keygopher/firmware"
	"keygopher/hid"
	"keygopher/usb"
)

// pid.codes test VID/PID shared by open hardware keyboards
const (
	vendorID  = 0x16C0
	productID = 0x27DB
	release   = 0x0100
)

// 96-bit unique device ID (RM0008 §30.2)
const uidBase = 0x1FFFF7E8

var (
	clock core.Clock
	trace = core.NewTrace(&clock)
)

// serial renders the unique device ID as 24 hex digits
func serial() string {
	const digits = "0123456789ABCDEF"
	var s [24]byte
	for i := 0; i < 3; i++ {
		w := (*volatile.Register32)(unsafe.Pointer(uintptr(uidBase + 4*i))).Get()
		for j := 0; j < 8; j++ {
			s[i*8+j] = digits[(w>>(28-4*j))&0xF]
		}
	}
	return string(s[:])
}

func main() {
	// Must come first: a later fault should still drop into the bootloader
	// on the next reset.
	if err := core.ArmBootloader(backupDomain{}); err != nil {
		core.Halt(trace, err)
	}

	InitDebugUART()
	trace.SetWriter(DebugPrintln)

	ctl := NewUSBController()
	if err := ctl.Init(context.Background()); err != nil {
		core.Halt(trace, err)
	}
	stack := usb.NewStack(ctl, hid.Descriptors(hid.DeviceInfo{
		VendorID:     vendorID,
		ProductID:    productID,
		Release:      release,
		Manufacturer: "keygopher",
		Product:      board().Name,
		Serial:       serial(),
	}), hid.EndpointIn)

	kb, err := firmware.New(firmware.Config{
		Board:    board(),
		Layers:   layers,
		GPIO:     NewSTMGPIODriver(),
		Device:   stack,
		Endpoint: stack,
		Clock:    &clock,
		Trace:    trace,
	})
	if err != nil {
		core.Halt(trace, err)
	}
	DebugPrintln("keyboard " + board().Name + " ready")

	ctl.Bind(kb.Scheduler(), kb.USBTxTask(), kb.USBRxTask())
	if err := ctl.Start(); err != nil {
		core.Halt(trace, err)
	}
	InitTickTimer(kb.Scheduler(), kb.TickTask(), board().TickHz)

	for {
		arm.Asm("wfi")
	}
}
