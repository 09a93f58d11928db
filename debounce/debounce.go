// Package debounce turns raw matrix samples into stable key transitions.
package debounce

import (
	"keygopher/core"
	"keygopher/matrix"
)

// Debouncer confirms a key's new state only after the raw sample has
// disagreed with the confirmed state for settle consecutive ticks. A single
// agreeing sample restarts the count, so contact bounce never produces an
// event; every real transition is delayed by settle ticks.
type Debouncer struct {
	rows, cols uint8
	settle     uint8
	confirmed  matrix.Grid
	count      [core.MaxRows][core.MaxCols]uint8
	events     [core.MaxRows * core.MaxCols]matrix.Event
}

// New creates a debouncer for a rows x cols matrix with every key released.
func New(rows, cols, settle uint8) *Debouncer {
	if rows > core.MaxRows {
		rows = core.MaxRows
	}
	if cols > core.MaxCols {
		cols = core.MaxCols
	}
	if settle == 0 {
		settle = 1
	}
	return &Debouncer{rows: rows, cols: cols, settle: settle}
}

// Update consumes one raw sample and returns the transitions it confirms,
// in row-major order. The slice aliases internal storage and is only valid
// until the next call.
func (d *Debouncer) Update(raw *matrix.Grid) []matrix.Event {
	n := 0
	for r := uint8(0); r < d.rows; r++ {
		diff := (raw[r] ^ d.confirmed[r]) & (1<<d.cols - 1)
		if diff == 0 {
			// fast path: the whole row agrees
			d.count[r] = [core.MaxCols]uint8{}
			continue
		}
		for c := uint8(0); c < d.cols; c++ {
			if diff&(1<<c) == 0 {
				d.count[r][c] = 0
				continue
			}
			d.count[r][c]++
			if d.count[r][c] < d.settle {
				continue
			}
			d.count[r][c] = 0
			pressed := raw.Get(r, c)
			d.confirmed.Set(r, c, pressed)
			if pressed {
				d.events[n] = matrix.PressOf(r, c)
			} else {
				d.events[n] = matrix.ReleaseOf(r, c)
			}
			n++
		}
	}
	return d.events[:n]
}

// Pressed reports the confirmed state of a key
func (d *Debouncer) Pressed(k matrix.Key) bool {
	if k.Row >= d.rows || k.Col >= d.cols {
		return false
	}
	return d.confirmed.Get(k.Row, k.Col)
}

// Settle returns the settle count in ticks
func (d *Debouncer) Settle() uint8 {
	return d.settle
}

// Reset forgets all confirmed state and counters
func (d *Debouncer) Reset() {
	d.confirmed.Clear()
	d.count = [core.MaxRows][core.MaxCols]uint8{}
}
