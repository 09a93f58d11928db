//go:build stm32f103

package main

import (
	"context"
	"device/arm"
	"device/stm32"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"time"
	"unsafe"

	"github.com/ardnew/softusb/device/hal"
	"github.com/ardnew/softusb/pkg"

	"keygopher/core"
	"keygopher/usb"
)

// STM32F103 USB full-speed device peripheral (RM0008 §23).
//
// Register offsets from 0x40005C00:
// EPnR   @ 0x00 + 4n
// CNTR   @ 0x40 - FRES bit 0, PDWN bit 1, RESETM bit 10, CTRM bit 15
// ISTR   @ 0x44 - EP_ID bits 0-3, RESET bit 10, CTR bit 15
// DADDR  @ 0x4C - ADD bits 0-6, EF bit 7
// BTABLE @ 0x50
//
// The 512-byte packet memory at 0x40006000 is 16 bits wide and appears to
// the CPU on a 32-bit stride.
const (
	usbBase      = 0x40005C00
	usbCNTRAddr  = usbBase + 0x40
	usbISTRAddr  = usbBase + 0x44
	usbDADDRAddr = usbBase + 0x4C
	usbBTABLEAdr = usbBase + 0x50
	pmaBase      = 0x40006000

	apb1USBEN = 1 << 23

	cntrFRES   = 1 << 0
	cntrPDWN   = 1 << 1
	cntrRESETM = 1 << 10
	cntrCTRM   = 1 << 15

	istrEPID  = 0x0F
	istrRESET = 1 << 10
	istrSUSP  = 1 << 11
	istrWKUP  = 1 << 12
	istrCTR   = 1 << 15

	daddrEF = 1 << 7
)

// EPnR fields. CTR bits clear on write 0; DTOG and STAT bits toggle on
// write 1; the rest are plain read/write.
const (
	epEA      = 0x000F
	epSTATTX  = 0x0030
	epDTOGTX  = 0x0040
	epCTRTX   = 0x0080
	epKIND    = 0x0100
	epTYPE    = 0x0600
	epSETUP   = 0x0800
	epSTATRX  = 0x3000
	epDTOGRX  = 0x4000
	epCTRRX   = 0x8000
	epRW      = epEA | epKIND | epTYPE
	epControl = 0x0200
	epIntr    = 0x0600

	statDisabled = 0
	statStall    = 1
	statNAK      = 2
	statValid    = 3
)

// Packet memory layout: buffer table at 0, then one 64-byte buffer each for
// EP0 OUT, EP0 IN and the keyboard's IN endpoint.
const (
	ep0Size  = 64
	ep0RxBuf = 0x40
	ep0TxBuf = 0x80
	ep1TxBuf = 0xC0

	// BL_SIZE=1, NUM_BLOCK=1: two 32-byte blocks
	rxCount64 = 1<<15 | 1<<10

	maxEndpoints = 8
	maxControlIn = 128
)

var (
	usbCNTR   = (*volatile.Register32)(unsafe.Pointer(uintptr(usbCNTRAddr)))
	usbISTR   = (*volatile.Register32)(unsafe.Pointer(uintptr(usbISTRAddr)))
	usbDADDR  = (*volatile.Register32)(unsafe.Pointer(uintptr(usbDADDRAddr)))
	usbBTABLE = (*volatile.Register32)(unsafe.Pointer(uintptr(usbBTABLEAdr)))
)

func epReg(n uint8) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(usbBase + 4*uint32(n))))
}

func pmaWord(off uint16) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(pmaBase + 2*uint32(off))))
}

// Buffer table entries of endpoint n
func btAddrTX(n uint8) uint16  { return 8 * uint16(n) }
func btCountTX(n uint8) uint16 { return 8*uint16(n) + 2 }
func btAddrRX(n uint8) uint16  { return 8*uint16(n) + 4 }
func btCountRX(n uint8) uint16 { return 8*uint16(n) + 6 }

func pmaWrite(off uint16, p []byte) {
	for i := 0; i < len(p); i += 2 {
		w := uint32(p[i])
		if i+1 < len(p) {
			w |= uint32(p[i+1]) << 8
		}
		pmaWord(off + uint16(i)).Set(w)
	}
}

func pmaRead(off uint16, p []byte) {
	for i := 0; i < len(p); i += 2 {
		w := pmaWord(off + uint16(i)).Get()
		p[i] = byte(w)
		if i+1 < len(p) {
			p[i+1] = byte(w >> 8)
		}
	}
}

func setTxStat(n uint8, stat uint32) {
	r := epReg(n)
	v := r.Get()
	r.Set(v&epRW | epCTRRX | epCTRTX | (v^stat<<4)&epSTATTX)
}

func setRxStat(n uint8, stat uint32) {
	r := epReg(n)
	v := r.Get()
	r.Set(v&epRW | epCTRRX | epCTRTX | (v^stat<<12)&epSTATRX)
}

func clearCTR(n uint8, bit uint32) {
	r := epReg(n)
	r.Set(r.Get()&epRW | (epCTRRX|epCTRTX)&^bit)
}

// openEndpoint programs type and address and resets both data toggles
func openEndpoint(n uint8, typ, tx, rx uint32) {
	r := epReg(n)
	v := r.Get()
	w := typ | uint32(n) | epCTRRX | epCTRTX
	w |= v & (epDTOGRX | epDTOGTX)
	w |= (v ^ rx<<12) & epSTATRX
	w |= (v ^ tx<<4) & epSTATTX
	r.Set(w)
}

// USBController drives the USB peripheral for a usb.Stack. The interrupt
// handlers answer bus resets, stream multi-packet control IN data and
// latch everything else as usb.Events for the USB tasks.
type USBController struct {
	events    usb.Events
	connected bool

	address     uint8
	addrPending bool

	ep0In     [maxControlIn]byte
	ep0InLen  int
	ep0InOff  int
	ep0InMore bool
	ep0RxLen  uint16

	in     uint8 // open interrupt IN endpoint number, 0 when closed
	inSize uint16
	txBusy bool

	sched  *core.Scheduler
	txTask core.TaskID
	rxTask core.TaskID
}

var usbCtl *USBController

// NewUSBController returns the controller. There is one USB peripheral.
func NewUSBController() *USBController {
	if usbCtl == nil {
		usbCtl = &USBController{}
	}
	return usbCtl
}

// Bind routes USB interrupts to the firmware's USB tasks and raises them
// above the tick.
func (c *USBController) Bind(s *core.Scheduler, tx, rx core.TaskID) {
	state := interrupt.Disable()
	c.sched = s
	c.txTask = tx
	c.rxTask = rx
	interrupt.Restore(state)

	hp := interrupt.New(stm32.IRQ_USB_HP_CAN_TX, handleUSBTx)
	hp.SetPriority(usbIRQPriority)
	hp.Enable()
	lp := interrupt.New(stm32.IRQ_USB_LP_CAN_RX0, handleUSBRx)
	lp.SetPriority(usbIRQPriority)
	lp.Enable()
}

func handleUSBTx(interrupt.Interrupt) {
	usbCtl.service(usbCtl.txTask)
}

func handleUSBRx(interrupt.Interrupt) {
	usbCtl.service(usbCtl.rxTask)
}

// service runs in the USB interrupt
func (c *USBController) service(task core.TaskID) {
	istr := usbISTR.Get()
	if istr&istrRESET != 0 {
		usbISTR.Set(0xFFFF &^ istrRESET)
		c.busReset()
		c.events |= usb.EventReset
	}
	if istr&(istrSUSP|istrWKUP) != 0 {
		usbISTR.Set(0xFFFF &^ (istrSUSP | istrWKUP))
	}

	for {
		istr = usbISTR.Get()
		if istr&istrCTR == 0 {
			break
		}
		n := uint8(istr & istrEPID)
		v := epReg(n).Get()
		if n == 0 {
			if v&epCTRTX != 0 {
				clearCTR(0, epCTRTX)
				c.ep0Sent()
			}
			if v&epCTRRX != 0 {
				c.ep0RxLen = uint16(pmaWord(btCountRX(0)).Get() & 0x3FF)
				clearCTR(0, epCTRRX)
				if v&epSETUP != 0 {
					c.events |= usb.EventSetup
				} else {
					c.events |= usb.EventControlOut
				}
			}
			continue
		}
		if v&epCTRTX != 0 {
			clearCTR(n, epCTRTX)
			c.txBusy = false
			c.events |= usb.EventTransmitted
		}
		if v&epCTRRX != 0 {
			clearCTR(n, epCTRRX)
		}
	}

	if c.events != 0 && c.sched != nil {
		c.sched.Trigger(task)
	}
}

// busReset reopens endpoint 0 at address 0. The peripheral disables every
// endpoint on a bus reset.
func (c *USBController) busReset() {
	usbBTABLE.Set(0)
	pmaWord(btAddrTX(0)).Set(ep0TxBuf)
	pmaWord(btCountTX(0)).Set(0)
	pmaWord(btAddrRX(0)).Set(ep0RxBuf)
	pmaWord(btCountRX(0)).Set(rxCount64)
	openEndpoint(0, epControl, statNAK, statValid)
	usbDADDR.Set(daddrEF)

	c.connected = true
	c.address = 0
	c.addrPending = false
	c.ep0InMore = false
	c.in = 0
	c.txBusy = false
}

// ep0Sent runs when the host took an EP0 IN packet
func (c *USBController) ep0Sent() {
	if c.addrPending {
		c.addrPending = false
		usbDADDR.Set(daddrEF | uint32(c.address))
	}
	if c.ep0InMore {
		c.ep0Next()
	}
}

// ep0Next queues the next packet of the staged control IN data
func (c *USBController) ep0Next() {
	chunk := min(c.ep0InLen-c.ep0InOff, ep0Size)
	pmaWrite(ep0TxBuf, c.ep0In[c.ep0InOff:c.ep0InOff+chunk])
	pmaWord(btCountTX(0)).Set(uint32(chunk))
	c.ep0InOff += chunk
	c.ep0InMore = c.ep0InOff < c.ep0InLen
	setTxStat(0, statValid)
}

// Events returns and clears the events latched by the interrupt handlers
func (c *USBController) Events() usb.Events {
	state := interrupt.Disable()
	ev := c.events
	c.events = 0
	interrupt.Restore(state)
	return ev
}

// Init clocks and powers up the peripheral with interrupts masked. D+ is
// pulsed low first, while the pin is still a GPIO, so the host enumerates
// again after a reset without replugging.
func (c *USBController) Init(ctx context.Context) error {
	resetUSBBus()

	// USBPRE stays at its reset value: 72 MHz PLL / 1.5 = 48 MHz
	apb1en.SetBits(apb1USBEN)
	usbCNTR.Set(cntrFRES)
	time.Sleep(time.Microsecond) // tSTARTUP
	usbCNTR.Set(0)
	usbISTR.Set(0)
	return nil
}

// Start unmasks the reset and transfer interrupts. Bind must come first.
func (c *USBController) Start() error {
	if c.sched == nil {
		return core.ErrNilDriver
	}
	usbCNTR.Set(cntrCTRM | cntrRESETM)
	return nil
}

// Stop powers the peripheral down
func (c *USBController) Stop() error {
	usbCNTR.Set(cntrFRES | cntrPDWN)
	c.connected = false
	return nil
}

// SetAddress latches the address; it is applied once the host has taken the
// status stage of SET_ADDRESS.
func (c *USBController) SetAddress(address uint8) error {
	c.address = address
	if address == 0 {
		usbDADDR.Set(daddrEF)
		return nil
	}
	c.addrPending = true
	return nil
}

// ConfigureEndpoints opens a single interrupt IN endpoint, the only kind the
// keyboard uses. nil closes every data endpoint.
func (c *USBController) ConfigureEndpoints(endpoints []hal.EndpointConfig) error {
	for n := uint8(1); n < maxEndpoints; n++ {
		if epReg(n).Get()&(epSTATTX|epSTATRX) != 0 {
			openEndpoint(n, 0, statDisabled, statDisabled)
		}
	}
	c.in = 0
	c.txBusy = false

	for i := range endpoints {
		ep := &endpoints[i]
		n := ep.Number()
		if !ep.IsIn() || ep.TransferType() != 0x03 || n == 0 || n >= maxEndpoints || c.in != 0 {
			return pkg.ErrNotSupported
		}
		if ep.MaxPacketSize > ep0Size {
			return pkg.ErrInvalidParameter
		}
		pmaWord(btAddrTX(n)).Set(ep1TxBuf)
		pmaWord(btCountTX(n)).Set(0)
		openEndpoint(n, epIntr, statNAK, statDisabled)
		c.in = n
		c.inSize = ep.MaxPacketSize
	}
	return nil
}

// ReadSetup copies the SETUP packet out of packet memory and re-arms EP0
// OUT for the data or status stage.
func (c *USBController) ReadSetup(ctx context.Context, out *hal.SetupPacket) error {
	var raw [hal.SetupPacketSize]byte
	pmaRead(ep0RxBuf, raw[:])
	// A SETUP ends any control IN still in progress
	c.ep0InMore = false
	setRxStat(0, statValid)
	if !hal.ParseSetupPacket(raw[:], out) {
		return pkg.ErrSetupPacketTooShort
	}
	return nil
}

// WriteEP0 stages data and queues its first packet. The rest follow from
// the interrupt handler. Data stages end on a short packet; no descriptor
// served here is a multiple of 64 bytes.
func (c *USBController) WriteEP0(ctx context.Context, data []byte) error {
	if len(data) > len(c.ep0In) {
		return pkg.ErrBufferTooSmall
	}
	c.ep0InLen = copy(c.ep0In[:], data)
	c.ep0InOff = 0
	c.ep0Next()
	setRxStat(0, statValid)
	return nil
}

// ReadEP0 copies the OUT packet the interrupt handler reported and re-arms
// EP0 OUT. An empty buf only re-arms, for a status stage.
func (c *USBController) ReadEP0(ctx context.Context, buf []byte) (int, error) {
	n := min(len(buf), int(c.ep0RxLen))
	pmaRead(ep0RxBuf, buf[:n])
	setRxStat(0, statValid)
	return n, nil
}

// StallEP0 stalls both directions until the next SETUP
func (c *USBController) StallEP0() error {
	c.ep0InMore = false
	setTxStat(0, statStall)
	setRxStat(0, statStall)
	return nil
}

// AckEP0 queues the zero-length status packet
func (c *USBController) AckEP0() error {
	c.ep0InMore = false
	pmaWord(btCountTX(0)).Set(0)
	setTxStat(0, statValid)
	return nil
}

// Read is unsupported: the keyboard has no OUT data endpoint and takes LED
// reports through SET_REPORT.
func (c *USBController) Read(ctx context.Context, address uint8, buf []byte) (int, error) {
	return 0, pkg.ErrNotSupported
}

// Write queues one packet on the IN endpoint. It accepts nothing while the
// previous packet has not been taken by the host.
func (c *USBController) Write(ctx context.Context, address uint8, data []byte) (int, error) {
	n := address & 0x0F
	if c.in == 0 || n != c.in {
		return 0, pkg.ErrInvalidEndpoint
	}
	if len(data) > int(c.inSize) {
		return 0, pkg.ErrBufferTooSmall
	}
	if c.txBusy {
		return 0, nil
	}
	pmaWrite(ep1TxBuf, data)
	pmaWord(btCountTX(n)).Set(uint32(len(data)))
	c.txBusy = true
	setTxStat(n, statValid)
	return len(data), nil
}

// Stall halts an endpoint
func (c *USBController) Stall(address uint8) error {
	n := address & 0x0F
	if address&0x80 != 0 {
		setTxStat(n, statStall)
	} else {
		setRxStat(n, statStall)
	}
	return nil
}

// ClearStall resumes a halted endpoint with its data toggle reset
func (c *USBController) ClearStall(address uint8) error {
	n := address & 0x0F
	r := epReg(n)
	v := r.Get()
	if address&0x80 != 0 {
		r.Set(v&epRW | epCTRRX | epCTRTX | v&epDTOGTX)
		setTxStat(n, statNAK)
		c.txBusy = false
	} else {
		r.Set(v&epRW | epCTRRX | epCTRTX | v&epDTOGRX)
		setRxStat(n, statValid)
	}
	return nil
}

// IsConnected reports whether the host has reset the device since power-up
func (c *USBController) IsConnected() bool {
	return c.connected
}

// GetSpeed returns full speed, the only speed of this peripheral
func (c *USBController) GetSpeed() hal.Speed {
	return hal.SpeedFull
}

// WaitConnect sleeps until the first bus reset
func (c *USBController) WaitConnect(ctx context.Context) error {
	for !c.connected {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		arm.Asm("wfi")
	}
	return nil
}

// WaitDisconnect returns once Stop has detached the device
func (c *USBController) WaitDisconnect(ctx context.Context) error {
	for c.connected {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		arm.Asm("wfi")
	}
	return nil
}

var _ usb.Controller = (*USBController)(nil)

// resetUSBBus pulls D+ low so the host sees a disconnect and enumerates
// again after a reset without replugging.
func resetUSBBus() {
	dp := machine.PA12
	dp.Configure(machine.PinConfig{Mode: machine.PinOutput})
	dp.Low()
	time.Sleep(10 * time.Millisecond)
	dp.Configure(machine.PinConfig{Mode: machine.PinInput})
}
