// Package kb60 is the 60% board: 12 columns by 5 rows with four layers.
// Layer 3 holds a spare function row and has no key that reaches it.
package kb60

import (
	"keygopher/boards"
	"keygopher/core"
	"keygopher/keymap"
)

// Board returns the 60% PCB configuration.
func Board() core.BoardConfig {
	return boards.Board("kb60", boards.Columns60())
}

var (
	cut    = keymap.Chord(keymap.LShift, keymap.Delete)
	cpy    = keymap.Chord(keymap.LCtrl, keymap.Insert)
	paste  = keymap.Chord(keymap.LShift, keymap.Insert)
	cspace = keymap.Chord(keymap.LCtrl, keymap.Space)

	l2Enter = keymap.HoldTap(&keymap.HoldTapAction{
		Timeout: 200,
		Mode:    keymap.HoldOnOtherKeyPress,
		Hold:    keymap.Layer(2),
		Tap:     keymap.Key(keymap.Enter),
	})
	l1Space = keymap.HoldTap(&keymap.HoldTapAction{
		Timeout: 200,
		Mode:    keymap.Default,
		Hold:    keymap.Layer(1),
		Tap:     keymap.Key(keymap.Space),
	})

	__ = keymap.Trans
)

// k is a plain key
func k(c keymap.KeyCode) keymap.Action { return keymap.Key(c) }

// s is the shifted symbol of c
func s(c keymap.KeyCode) keymap.Action { return keymap.Chord(keymap.LShift, c) }

// a is the AltGr symbol of c
func a(c keymap.KeyCode) keymap.Action { return keymap.Chord(keymap.RAlt, c) }

// Layers is the 60% keymap.
var Layers = keymap.Layers{
	{
		{k(keymap.Grave), k(keymap.Kb1), k(keymap.Kb2), k(keymap.Kb3), k(keymap.Kb4), k(keymap.Kb5), k(keymap.Kb6), k(keymap.Kb7), k(keymap.Kb8), k(keymap.Kb9), k(keymap.Kb0), k(keymap.Minus)},
		{k(keymap.Tab), k(keymap.Q), k(keymap.W), k(keymap.E), k(keymap.R), k(keymap.T), k(keymap.Y), k(keymap.U), k(keymap.I), k(keymap.O), k(keymap.P), k(keymap.LBracket)},
		{k(keymap.RBracket), k(keymap.A), k(keymap.S), k(keymap.D), k(keymap.F), k(keymap.G), k(keymap.H), k(keymap.J), k(keymap.K), k(keymap.L), k(keymap.SColon), k(keymap.Quote)},
		{k(keymap.Equal), k(keymap.Z), k(keymap.X), k(keymap.C), k(keymap.V), k(keymap.B), k(keymap.N), k(keymap.M), k(keymap.Comma), k(keymap.Dot), k(keymap.Slash), k(keymap.Bslash)},
		{__, __, k(keymap.LGui), k(keymap.LAlt), l1Space, k(keymap.LCtrl), k(keymap.RShift), l2Enter, k(keymap.RAlt), k(keymap.BSpace), __, __},
	},
	{
		{k(keymap.F1), k(keymap.F2), k(keymap.F3), k(keymap.F4), k(keymap.F5), k(keymap.F6), k(keymap.F7), k(keymap.F8), k(keymap.F9), k(keymap.F10), k(keymap.F11), k(keymap.F12)},
		{__, k(keymap.Pause), __, k(keymap.PScreen), __, __, __, __, k(keymap.Delete), __, __, __},
		{__, __, k(keymap.NumLock), k(keymap.Insert), k(keymap.Escape), __, k(keymap.CapsLock), k(keymap.Left), k(keymap.Down), k(keymap.Up), k(keymap.Right), __},
		{k(keymap.NonUsBslash), k(keymap.Undo), cut, cpy, paste, __, __, k(keymap.Home), k(keymap.PgDown), k(keymap.PgUp), k(keymap.End), __},
		{__, __, __, __, __, __, __, __, __, __, __, __},
	},
	{
		{__, __, __, __, __, __, __, __, __, __, __, __},
		{s(keymap.Grave), s(keymap.Kb1), s(keymap.Kb2), s(keymap.Kb3), s(keymap.Kb4), s(keymap.Kb5), s(keymap.Kb6), s(keymap.Kb7), s(keymap.Kb8), s(keymap.Kb9), s(keymap.Kb0), s(keymap.Minus)},
		{k(keymap.Grave), k(keymap.Kb1), k(keymap.Kb2), k(keymap.Kb3), k(keymap.Kb4), k(keymap.Kb5), k(keymap.Kb6), k(keymap.Kb7), k(keymap.Kb8), k(keymap.Kb9), k(keymap.Kb0), k(keymap.Minus)},
		{a(keymap.Grave), a(keymap.Kb1), a(keymap.Kb2), a(keymap.Kb3), a(keymap.Kb4), a(keymap.Kb5), a(keymap.Kb6), a(keymap.Kb7), a(keymap.Kb8), a(keymap.Kb9), a(keymap.Kb0), a(keymap.Minus)},
		{__, __, __, __, cspace, __, __, __, __, __, __, __},
	},
	{
		{__, __, __, __, __, __, __, __, __, __, __, __},
		{k(keymap.F1), k(keymap.F2), k(keymap.F3), k(keymap.F4), k(keymap.F5), k(keymap.F6), k(keymap.F7), k(keymap.F8), k(keymap.F9), k(keymap.F10), k(keymap.F11), k(keymap.F12)},
		{__, __, __, __, __, __, __, __, __, __, __, __},
		{__, __, __, __, __, __, __, __, __, __, __, __},
		{__, __, __, __, __, __, __, __, __, __, __, __},
	},
}
