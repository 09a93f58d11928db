package keymap

import (
	"fmt"

	"keygopher/core"
)

// MaxLayers is the number of layers the layout engine can track.
const MaxLayers = 32

// Layers is a keymap table indexed by [layer][row][col].
type Layers [][][]Action

// Len returns the number of layers
func (l Layers) Len() int {
	return len(l)
}

// At returns the action of a cell. Positions outside the table are NoOp.
func (l Layers) At(layer, row, col uint8) Action {
	if int(layer) >= len(l) || int(row) >= len(l[layer]) || int(col) >= len(l[layer][row]) {
		return NoOp
	}
	return l[layer][row][col]
}

// Validate checks that every layer matches the board geometry and that every
// action is well formed. A table that passes cannot make the layout engine
// index out of range.
func (l Layers) Validate(board core.BoardConfig) error {
	if len(l) == 0 {
		return fmt.Errorf("keymap: no layers: %w", core.ErrMatrixDimension)
	}
	if len(l) > MaxLayers {
		return fmt.Errorf("keymap: %d layers: %w", len(l), core.ErrTooManyLayers)
	}
	for li, layer := range l {
		if len(layer) != int(board.Rows) {
			return fmt.Errorf("keymap: layer %d has %d rows, board %s has %d: %w",
				li, len(layer), board.Name, board.Rows, core.ErrMatrixDimension)
		}
		for ri, row := range layer {
			if len(row) != int(board.Cols) {
				return fmt.Errorf("keymap: layer %d row %d has %d columns, board %s has %d: %w",
					li, ri, len(row), board.Name, board.Cols, core.ErrMatrixDimension)
			}
			for ci, a := range row {
				if err := l.validateAction(a, false); err != nil {
					return fmt.Errorf("keymap: layer %d (%d,%d): %w", li, ri, ci, err)
				}
			}
		}
	}
	return nil
}

func (l Layers) validateAction(a Action, nested bool) error {
	switch a.Kind {
	case KindNoOp, KindTrans:
		return nil
	case KindKeyCode:
		return nil
	case KindChord:
		if a.Codes[0] == No {
			return fmt.Errorf("empty chord: %w", core.ErrInvalidAction)
		}
		return nil
	case KindLayerHold, KindLayerToggle, KindDefaultLayer:
		if int(a.Layer) >= len(l) {
			return fmt.Errorf("layer %d of %d: %w", a.Layer, len(l), core.ErrLayerIndex)
		}
		return nil
	case KindHoldTap:
		if nested {
			return fmt.Errorf("hold-tap inside hold-tap: %w", core.ErrInvalidAction)
		}
		if a.HoldTap == nil {
			return fmt.Errorf("hold-tap without configuration: %w", core.ErrInvalidAction)
		}
		if a.HoldTap.Mode != Default && a.HoldTap.Mode != HoldOnOtherKeyPress {
			return fmt.Errorf("hold-tap mode %d: %w", a.HoldTap.Mode, core.ErrInvalidAction)
		}
		if err := l.validateAction(a.HoldTap.Hold, true); err != nil {
			return err
		}
		return l.validateAction(a.HoldTap.Tap, true)
	default:
		return fmt.Errorf("kind %d: %w", a.Kind, core.ErrInvalidAction)
	}
}
