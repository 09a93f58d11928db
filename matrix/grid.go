// Package matrix reads the key switch matrix and defines the key and event
// types shared by the debouncer and the layout engine.
package matrix

import "keygopher/core"

// Key is a physical switch position.
type Key struct {
	Row uint8
	Col uint8
}

// EventKind is the direction of a key transition.
type EventKind uint8

const (
	Press EventKind = iota + 1
	Release
)

// Event is a debounced key transition.
type Event struct {
	Kind EventKind
	Key  Key
}

// PressOf and ReleaseOf build events.
func PressOf(row, col uint8) Event   { return Event{Kind: Press, Key: Key{row, col}} }
func ReleaseOf(row, col uint8) Event { return Event{Kind: Release, Key: Key{row, col}} }

// IsPress reports whether the event is a press
func (e Event) IsPress() bool { return e.Kind == Press }

// Grid is the raw pressed/released state of every switch, one bit per
// column in each row word.
type Grid [core.MaxRows]uint16

// Get reports whether the switch at (row, col) reads pressed
func (g *Grid) Get(row, col uint8) bool {
	return g[row]&(1<<col) != 0
}

// Set records the state of the switch at (row, col)
func (g *Grid) Set(row, col uint8, pressed bool) {
	if pressed {
		g[row] |= 1 << col
	} else {
		g[row] &^= 1 << col
	}
}

// Clear releases every switch
func (g *Grid) Clear() {
	*g = Grid{}
}
