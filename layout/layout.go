// Package layout resolves debounced key events into keycodes through a
// layered keymap with hold-tap keys.
//
// A Layout is driven once per tick by its single owner: deliver the tick's
// events with Event, advance with Tick, then read KeyCodes. It holds no
// locks and must not be shared across priorities.
package layout

import (
	"keygopher/core"
	"keygopher/keymap"
	"keygopher/matrix"
)

const (
	// MaxStates bounds the number of keycodes and held layers active at once.
	MaxStates = 64

	// MaxLayerBits is the width of the active-layer bitmask
	MaxLayerBits = keymap.MaxLayers
)

type stateKind uint8

const (
	stateKey stateKind = iota + 1
	stateLayer
)

// state is something a pressed key keeps active until it is released
type state struct {
	kind  stateKind
	key   matrix.Key
	code  keymap.KeyCode
	layer uint8
	// repeat is the tap-hold interval when the keycode came from a hold-tap
	// tap; releasing the key opens the rapid-repeat window.
	repeat uint16
}

// waiting is an undecided hold-tap
type waiting struct {
	key matrix.Key
	at  uint32
	cfg *keymap.HoldTapAction
}

// tapTracker remembers the last tapped hold-tap key for rapid repeats
type tapTracker struct {
	key       matrix.Key
	remaining uint16
}

type decision uint8

const (
	undecided decision = iota
	decideHold
	decideTap
)

// Layout is the layout engine state machine.
type Layout struct {
	layers       keymap.Layers
	now          uint32
	defaultLayer uint8
	toggled      uint32

	states  [MaxStates]state
	nstates int

	stack      eventStack
	waiting    waiting
	hasWaiting bool
	tracker    tapTracker

	trace *core.Trace
}

// New creates a layout over a validated keymap, with layer 0 as default.
func New(layers keymap.Layers) *Layout {
	return &Layout{layers: layers}
}

// SetTrace records hold-tap resolutions into t
func (l *Layout) SetTrace(t *core.Trace) {
	l.trace = t
}

// Event queues a debounced transition. It is processed on a later Tick.
// When the queue is full an undecided hold-tap resolves to hold and the
// oldest event is processed at once.
func (l *Layout) Event(ev matrix.Event) {
	if l.stack.full() {
		if l.hasWaiting {
			l.settle(true)
		}
		l.unstack(l.stack.pop())
	}
	l.stack.push(stacked{ev: ev, at: l.now})
}

// Tick advances time by one tick. It either settles the pending hold-tap
// or processes the oldest queued event, never both.
func (l *Layout) Tick() {
	l.now++
	if l.tracker.remaining > 0 {
		l.tracker.remaining--
	}

	if l.hasWaiting {
		switch l.decide() {
		case decideHold:
			l.settle(true)
		case decideTap:
			l.settle(false)
		}
		return
	}
	if l.stack.len() > 0 {
		l.unstack(l.stack.pop())
	}
}

// decide evaluates the pending hold-tap against queued events and time
func (l *Layout) decide() decision {
	w := &l.waiting
	timeout := uint32(w.cfg.Timeout)

	for i := 0; i < l.stack.len(); i++ {
		s := l.stack.at(i)
		if s.ev.Key == w.key && !s.ev.IsPress() {
			if s.at-w.at < timeout {
				return decideTap
			}
			return decideHold
		}
		if s.ev.IsPress() && w.cfg.Mode == keymap.HoldOnOtherKeyPress {
			return decideHold
		}
	}
	if l.now-w.at >= timeout {
		return decideHold
	}
	return undecided
}

func (l *Layout) settle(hold bool) {
	w := l.waiting
	l.hasWaiting = false

	var v uint32
	if hold {
		v = 1
	}
	l.trace.Record(core.EvtHoldTap, uint32(w.key.Row)<<8|uint32(w.key.Col), v)

	if hold {
		l.do(w.cfg.Hold, w.key, w.at, 0)
	} else {
		l.do(w.cfg.Tap, w.key, w.at, w.cfg.TapHoldInterval)
	}
}

func (l *Layout) unstack(s stacked) {
	if !s.ev.IsPress() {
		l.release(s)
		return
	}
	l.do(l.lookup(s.ev.Key), s.ev.Key, s.at, 0)
}

// lookup finds the action for a key on the highest active layer that does
// not defer downward. Layer 0 is always the bottom of the stack.
func (l *Layout) lookup(k matrix.Key) keymap.Action {
	active := l.ActiveLayers()
	for layer := l.layers.Len() - 1; layer >= 0; layer-- {
		if active&(1<<layer) == 0 {
			continue
		}
		a := l.layers.At(uint8(layer), k.Row, k.Col)
		if a.Kind != keymap.KindTrans {
			return a
		}
	}
	return keymap.NoOp
}

func (l *Layout) do(a keymap.Action, k matrix.Key, at uint32, repeat uint16) {
	switch a.Kind {
	case keymap.KindNoOp, keymap.KindTrans:
	case keymap.KindKeyCode, keymap.KindChord:
		var buf [keymap.MaxChord]keymap.KeyCode
		for _, code := range a.KeyCodes(buf[:0]) {
			l.push(state{kind: stateKey, key: k, code: code, repeat: repeat})
		}
	case keymap.KindLayerHold:
		l.push(state{kind: stateLayer, key: k, layer: a.Layer})
	case keymap.KindLayerToggle:
		l.toggled ^= 1 << a.Layer
	case keymap.KindDefaultLayer:
		l.defaultLayer = a.Layer
	case keymap.KindHoldTap:
		cfg := a.HoldTap
		if cfg.TapHoldInterval > 0 && l.tracker.remaining > 0 && l.tracker.key == k {
			l.tracker.remaining = 0
			l.do(cfg.Tap, k, at, cfg.TapHoldInterval)
			return
		}
		l.waiting = waiting{key: k, at: at, cfg: cfg}
		l.hasWaiting = true
	}
}

func (l *Layout) push(s state) {
	if l.nstates == MaxStates {
		return
	}
	l.states[l.nstates] = s
	l.nstates++
}

// release drops every state the key holds, keeping the others in order
func (l *Layout) release(s stacked) {
	n := 0
	for i := 0; i < l.nstates; i++ {
		st := l.states[i]
		if st.key == s.ev.Key {
			if st.repeat > 0 {
				l.arm(st.key, st.repeat, l.now-s.at)
			}
			continue
		}
		l.states[n] = st
		n++
	}
	l.nstates = n
}

// arm opens the rapid-repeat window, discounting ticks the release spent
// queued
func (l *Layout) arm(k matrix.Key, interval uint16, elapsed uint32) {
	if elapsed >= uint32(interval) {
		return
	}
	l.tracker = tapTracker{key: k, remaining: interval - uint16(elapsed)}
}

// KeyCodes appends the currently resolved keycodes in press order.
func (l *Layout) KeyCodes(dst []keymap.KeyCode) []keymap.KeyCode {
	for i := 0; i < l.nstates; i++ {
		if l.states[i].kind == stateKey {
			dst = append(dst, l.states[i].code)
		}
	}
	return dst
}

// ActiveLayers returns the set of active layers as a bitmask. Bit 0 is
// always set.
func (l *Layout) ActiveLayers() uint32 {
	active := uint32(1) | 1<<l.defaultLayer | l.toggled
	for i := 0; i < l.nstates; i++ {
		if l.states[i].kind == stateLayer {
			active |= 1 << l.states[i].layer
		}
	}
	return active
}

// CurrentLayer returns the highest active layer
func (l *Layout) CurrentLayer() uint8 {
	active := l.ActiveLayers()
	for layer := MaxLayerBits - 1; layer > 0; layer-- {
		if active&(1<<layer) != 0 {
			return uint8(layer)
		}
	}
	return 0
}

// DefaultLayer returns the current default layer
func (l *Layout) DefaultLayer() uint8 {
	return l.defaultLayer
}

// Waiting reports whether a hold-tap decision is pending
func (l *Layout) Waiting() bool {
	return l.hasWaiting
}

// Queued returns the number of events not yet processed
func (l *Layout) Queued() int {
	return l.stack.len()
}

// Now returns the number of ticks processed
func (l *Layout) Now() uint32 {
	return l.now
}
