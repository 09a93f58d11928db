// Package hid builds boot-keyboard reports and drives them to the USB
// keyboard class.
package hid

import "keygopher/keymap"

// Report layout.
const (
	ReportSize = 8 // modifiers, reserved, 6 key slots
	MaxKeys    = 6
)

// Report is an 8-byte boot keyboard input report.
type Report [ReportSize]byte

// NewReport builds a report from resolved keycodes. Modifiers go to the
// bitmask byte; other codes fill the six slots in order and anything past
// the sixth distinct code is dropped.
func NewReport(codes []keymap.KeyCode) Report {
	var r Report
	for _, c := range codes {
		r.Press(c)
	}
	return r
}

// Press adds a keycode to the report. It returns false when the code was
// dropped because all six slots are taken.
func (r *Report) Press(c keymap.KeyCode) bool {
	if c == keymap.No {
		return true
	}
	if c.IsModifier() {
		r[0] |= c.ModifierBit()
		return true
	}
	for i := 2; i < ReportSize; i++ {
		if r[i] == byte(c) {
			return true // Already set
		}
		if r[i] == 0 {
			r[i] = byte(c)
			return true
		}
	}
	return false
}

// Modifiers returns the modifier bitmask
func (r *Report) Modifiers() uint8 {
	return r[0]
}

// Keys returns the six key slots
func (r *Report) Keys() [MaxKeys]byte {
	var k [MaxKeys]byte
	copy(k[:], r[2:])
	return k
}

// KeyCount returns the number of occupied key slots
func (r *Report) KeyCount() int {
	n := 0
	for _, b := range r[2:] {
		if b != 0 {
			n++
		}
	}
	return n
}

// Bytes returns the wire form of the report
func (r *Report) Bytes() []byte {
	return r[:]
}
