// Package boards holds what the keyboard PCBs have in common. Each variant
// lives in its own subpackage with its board config and keymap.
package boards

import "keygopher/core"

// STM32 pins are numbered port*16 + line, the same numbering TinyGo's
// machine.Pin uses on stm32 targets.
const pinsPerPort = 16

// PA returns pin n of port A
func PA(n uint8) core.GPIOPin { return core.GPIOPin(0*pinsPerPort + uint32(n)) }

// PB returns pin n of port B
func PB(n uint8) core.GPIOPin { return core.GPIOPin(1*pinsPerPort + uint32(n)) }

// PC returns pin n of port C
func PC(n uint8) core.GPIOPin { return core.GPIOPin(2*pinsPerPort + uint32(n)) }

// Rows are the row lines shared by both PCBs, top row first.
func Rows() []core.GPIOPin {
	return []core.GPIOPin{PB(11), PB(10), PB(1), PB(0), PA(7)}
}

// Columns60 are the column lines of the 60% PCB, left to right.
func Columns60() []core.GPIOPin {
	return []core.GPIOPin{
		PB(12), PB(13), PB(14), PB(15), PA(8), PA(9),
		PA(10), PB(5), PB(6), PB(7), PB(8), PB(9),
	}
}

// Columns75 extends the 60% columns with the three keypad columns.
func Columns75() []core.GPIOPin {
	return append(Columns60(), PA(6), PA(5), PA(4))
}

// CapsLockLED is the Blue Pill's on-board LED, lit when PC13 is low.
var CapsLockLED = PC(13)

// Board returns the shared defaults for a Blue Pill keyboard
func Board(name string, cols []core.GPIOPin) core.BoardConfig {
	return core.BoardConfig{
		Name:              name,
		Rows:              5,
		Cols:              uint8(len(cols)),
		ColPins:           cols,
		RowPins:           Rows(),
		TickHz:            core.DefaultTickHz,
		SettleTicks:       core.DefaultSettleTicks,
		CapsLockPin:       CapsLockLED,
		CapsLockActiveLow: true,
	}
}
