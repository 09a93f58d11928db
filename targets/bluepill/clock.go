//go:build stm32f103

package main

import (
	"device/stm32"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"keygopher/core"
)

// STM32F103 peripheral memory map (RM0008 §3.3)
// TinyGo's runtime keeps TIM3 for sleep, so the scan tick runs on TIM4.
//
// TIM4 register offsets:
// CR1  @ 0x00 - CEN bit 0
// DIER @ 0x0C - UIE bit 0
// SR   @ 0x10 - UIF bit 0
// PSC  @ 0x28
// ARR  @ 0x2C
const (
	rccBase   = 0x40021000
	rccAPB1EN = rccBase + 0x1C

	tim4Base = 0x40000800
	tim4CR1  = tim4Base + 0x00
	tim4DIER = tim4Base + 0x0C
	tim4SR   = tim4Base + 0x10
	tim4PSC  = tim4Base + 0x28
	tim4ARR  = tim4Base + 0x2C

	pwrBase = 0x40007000
	pwrCR   = pwrBase + 0x00

	bkpBase = 0x40006C00
	bkpDR1  = bkpBase + 0x04 // DR1..DR10 are 4 bytes apart
)

const (
	apb1TIM4EN = 1 << 2
	apb1BKPEN  = 1 << 27
	apb1PWREN  = 1 << 28
	pwrDBP     = 1 << 8
	timCEN     = 1 << 0
	timUIE     = 1 << 0
	timUIF     = 1 << 0

	// TIM4 runs from APB1 x2 = 72 MHz; prescale to a 10 kHz count
	timerClockHz = 72000000
	timerCountHz = 10000

	// Cortex-M3 implements the top 4 priority bits; lower is more urgent
	tickIRQPriority = 0xC0
	usbIRQPriority  = 0x80
)

var (
	apb1en  = (*volatile.Register32)(unsafe.Pointer(uintptr(rccAPB1EN)))
	timCR1  = (*volatile.Register32)(unsafe.Pointer(uintptr(tim4CR1)))
	timDIER = (*volatile.Register32)(unsafe.Pointer(uintptr(tim4DIER)))
	timSR   = (*volatile.Register32)(unsafe.Pointer(uintptr(tim4SR)))
	timPSC  = (*volatile.Register32)(unsafe.Pointer(uintptr(tim4PSC)))
	timARR  = (*volatile.Register32)(unsafe.Pointer(uintptr(tim4ARR)))
	pwrCtl  = (*volatile.Register32)(unsafe.Pointer(uintptr(pwrCR)))
)

var (
	tickSched *core.Scheduler
	tickTask  core.TaskID
)

// InitTickTimer starts TIM4 at tickHz and binds its update interrupt to
// the tick task.
func InitTickTimer(s *core.Scheduler, task core.TaskID, tickHz uint32) {
	tickSched = s
	tickTask = task

	apb1en.SetBits(apb1TIM4EN)
	timPSC.Set(timerClockHz/timerCountHz - 1)
	timARR.Set(timerCountHz/tickHz - 1)
	timSR.ClearBits(timUIF)
	timDIER.SetBits(timUIE)

	irq := interrupt.New(stm32.IRQ_TIM4, handleTick)
	irq.SetPriority(tickIRQPriority)
	irq.Enable()

	timCR1.SetBits(timCEN)
}

func handleTick(interrupt.Interrupt) {
	timSR.ClearBits(timUIF)
	tickSched.Trigger(tickTask)
	// An update flagged during the tick means a period was lost; the NVIC
	// only re-pends TIM4 instead of nesting it.
	if timSR.Get()&timUIF != 0 {
		tickSched.Missed(tickTask)
	}
}

// backupDomain writes the battery-backed BKP data registers, which survive
// a system reset and are read by the bootloader.
type backupDomain struct{}

// WriteDataRegister writes value to data register DR(index+1)
func (backupDomain) WriteDataRegister(index uint8, value uint16) {
	apb1en.SetBits(apb1PWREN | apb1BKPEN)
	pwrCtl.SetBits(pwrDBP)

	dr := (*volatile.Register32)(unsafe.Pointer(uintptr(bkpDR1 + 4*uint32(index))))
	dr.Set(uint32(value))
}
