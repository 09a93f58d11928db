package keymap

// Kind selects the variant of an Action.
type Kind uint8

// Action variants. The set is closed; the layout engine handles every one.
const (
	KindNoOp         Kind = iota // do nothing
	KindTrans                    // defer to the next lower active layer
	KindKeyCode                  // press a single keycode
	KindChord                    // press several keycodes at once
	KindLayerHold                // activate a layer while held
	KindLayerToggle              // latch a layer on or off
	KindDefaultLayer             // change the default layer
	KindHoldTap                  // hold or tap depending on timing
)

// MaxChord is the largest number of keycodes a chord can press.
const MaxChord = 4

// Mode selects how a hold-tap decides between hold and tap.
type Mode uint8

const (
	// Default resolves to hold only when the timeout expires with the key
	// still down.
	Default Mode = iota

	// HoldOnOtherKeyPress also resolves to hold as soon as another key is
	// pressed before the hold-tap key is released.
	HoldOnOtherKeyPress
)

// HoldTapAction configures a hold-tap key.
type HoldTapAction struct {
	// Timeout is the number of ticks after which a held key resolves to Hold
	Timeout uint16
	Mode    Mode
	// TapHoldInterval is the window, in ticks after a tap is released, during
	// which pressing the key again taps immediately. 0 disables it.
	TapHoldInterval uint16
	Hold            Action
	Tap             Action
}

// Action is what a key does when pressed. Actions are built once into a
// Layers table and never modified.
type Action struct {
	Kind    Kind
	Layer   uint8             // KindLayerHold, KindLayerToggle, KindDefaultLayer
	Codes   [MaxChord]KeyCode // KindKeyCode uses Codes[0]; KindChord is 0-terminated
	HoldTap *HoldTapAction    // KindHoldTap
}

// NoOp and Trans are the two actions without parameters.
var (
	NoOp  = Action{Kind: KindNoOp}
	Trans = Action{Kind: KindTrans}
)

// Key presses a single keycode.
func Key(code KeyCode) Action {
	return Action{Kind: KindKeyCode, Codes: [MaxChord]KeyCode{code}}
}

// Chord presses several keycodes together, such as a modifier and a key.
// It panics when given more than MaxChord codes; tables are built at init,
// so this surfaces at boot of a malformed build.
func Chord(codes ...KeyCode) Action {
	if len(codes) == 0 || len(codes) > MaxChord {
		panic("keymap: chord must have 1 to 4 keycodes")
	}
	a := Action{Kind: KindChord}
	copy(a.Codes[:], codes)
	return a
}

// Layer activates a layer while the key is held.
func Layer(layer uint8) Action {
	return Action{Kind: KindLayerHold, Layer: layer}
}

// Toggle toggles a layer on each press.
func Toggle(layer uint8) Action {
	return Action{Kind: KindLayerToggle, Layer: layer}
}

// DefaultLayer sets the default layer.
func DefaultLayer(layer uint8) Action {
	return Action{Kind: KindDefaultLayer, Layer: layer}
}

// HoldTap builds a hold-tap key.
func HoldTap(cfg *HoldTapAction) Action {
	return Action{Kind: KindHoldTap, HoldTap: cfg}
}

// KeyCodes appends the keycodes pressed by a KeyCode or Chord action.
// Other kinds append nothing.
func (a Action) KeyCodes(dst []KeyCode) []KeyCode {
	switch a.Kind {
	case KindKeyCode:
		if a.Codes[0] != No {
			dst = append(dst, a.Codes[0])
		}
	case KindChord:
		for _, c := range a.Codes {
			if c == No {
				break
			}
			dst = append(dst, c)
		}
	}
	return dst
}
