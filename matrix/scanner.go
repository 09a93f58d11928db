package matrix

import (
	"fmt"

	"keygopher/core"
)

// Scanner samples the switch matrix through a GPIO driver. Rows are driven
// one at a time; columns are pulled up, so a pressed switch on the active
// row reads low.
type Scanner struct {
	gpio core.GPIODriver
	cols []core.GPIOPin
	rows []core.GPIOPin

	// SettleLoops is a busy-wait between driving a row and sampling its
	// columns, for boards whose lines need time to discharge.
	SettleLoops int
}

// NewScanner configures the board's matrix pins and returns a scanner with
// every row idle (high).
func NewScanner(gpio core.GPIODriver, board core.BoardConfig) (*Scanner, error) {
	if gpio == nil {
		return nil, fmt.Errorf("matrix: %w", core.ErrNilDriver)
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}

	for _, pin := range board.ColPins {
		if err := gpio.ConfigureInputPullUp(pin); err != nil {
			return nil, fmt.Errorf("matrix: column pin %d: %w: %w", pin, core.ErrPinConfig, err)
		}
	}
	for _, pin := range board.RowPins {
		if err := gpio.ConfigureOutput(pin); err != nil {
			return nil, fmt.Errorf("matrix: row pin %d: %w: %w", pin, core.ErrPinConfig, err)
		}
		if err := gpio.SetPin(pin, true); err != nil {
			return nil, fmt.Errorf("matrix: row pin %d: %w: %w", pin, core.ErrPinConfig, err)
		}
	}

	return &Scanner{
		gpio: gpio,
		cols: board.ColPins,
		rows: board.RowPins,
	}, nil
}

// Scan refreshes grid with the current switch states. With MCU pins it
// cannot fail; an expander-backed driver may report a bus error, which the
// caller treats as fatal.
func (s *Scanner) Scan(grid *Grid) error {
	for r, rowPin := range s.rows {
		if err := s.gpio.SetPin(rowPin, false); err != nil {
			return err
		}
		for i := 0; i < s.SettleLoops; i++ {
			spin()
		}
		var bits uint16
		for c, colPin := range s.cols {
			high, err := s.gpio.GetPin(colPin)
			if err != nil {
				return err
			}
			if !high {
				bits |= 1 << c
			}
		}
		grid[r] = bits
		if err := s.gpio.SetPin(rowPin, true); err != nil {
			return err
		}
	}
	return nil
}

// Rows returns the number of driven rows
func (s *Scanner) Rows() int { return len(s.rows) }

// Cols returns the number of sampled columns
func (s *Scanner) Cols() int { return len(s.cols) }

//go:noinline
func spin() {}
