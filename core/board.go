package core

import "fmt"

// Matrix storage limits. Scan grids and debounce counters are sized by these
// at compile time; a board may use any shape within them.
const (
	MaxRows = 8
	MaxCols = 16
)

// Timing defaults shared by both boards.
const (
	DefaultTickHz      = 1000 // scan/report tick rate
	DefaultSettleTicks = 5    // debounce settle count
)

// BoardConfig describes a PCB variant. Values are fixed at build time and
// never change after startup.
type BoardConfig struct {
	Name string

	// Matrix geometry. Every switch sits at (row, col).
	Rows uint8
	Cols uint8

	// ColPins are read, one per column, configured as pull-up inputs.
	// RowPins are driven, one per row, configured as push-pull outputs.
	// A pressed switch pulls its column low while its row is driven low.
	ColPins []GPIOPin
	RowPins []GPIOPin

	TickHz      uint32
	SettleTicks uint8

	// Caps Lock indicator
	CapsLockPin       GPIOPin
	CapsLockActiveLow bool
}

// Keys returns the number of switch positions on the board.
func (b BoardConfig) Keys() int {
	return int(b.Rows) * int(b.Cols)
}

// Validate checks the board description for configuration errors.
func (b BoardConfig) Validate() error {
	if b.Rows == 0 || b.Cols == 0 || b.Rows > MaxRows || b.Cols > MaxCols {
		return fmt.Errorf("board %s: %dx%d matrix: %w", b.Name, b.Cols, b.Rows, ErrMatrixDimension)
	}
	if len(b.ColPins) != int(b.Cols) {
		return fmt.Errorf("board %s: %d column pins for %d columns: %w",
			b.Name, len(b.ColPins), b.Cols, ErrMatrixDimension)
	}
	if len(b.RowPins) != int(b.Rows) {
		return fmt.Errorf("board %s: %d row pins for %d rows: %w",
			b.Name, len(b.RowPins), b.Rows, ErrMatrixDimension)
	}
	if b.TickHz == 0 || b.TickHz > 8000 {
		return fmt.Errorf("board %s: %d Hz: %w", b.Name, b.TickHz, ErrTickRate)
	}
	if b.SettleTicks == 0 {
		return fmt.Errorf("board %s: %w", b.Name, ErrSettleCount)
	}
	return nil
}
