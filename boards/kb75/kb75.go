// Package kb75 is the 75% board: the 60% matrix with a keypad block in
// the middle, 15 columns by 5 rows and two layers.
package kb75

import (
	"keygopher/boards"
	"keygopher/core"
	"keygopher/keymap"
)

// Board returns the 75% PCB configuration.
func Board() core.BoardConfig {
	return boards.Board("kb75", boards.Columns75())
}

var (
	cut    = keymap.Chord(keymap.LShift, keymap.Delete)
	cpy    = keymap.Chord(keymap.LCtrl, keymap.Insert)
	paste  = keymap.Chord(keymap.LShift, keymap.Insert)
	center = keymap.Chord(keymap.LCtrl, keymap.Enter)

	cEnter = keymap.HoldTap(&keymap.HoldTapAction{
		Timeout: 200,
		Mode:    keymap.HoldOnOtherKeyPress,
		Hold:    keymap.Key(keymap.LCtrl),
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

func k(c keymap.KeyCode) keymap.Action { return keymap.Key(c) }

// d switches the base layer
func d(layer uint8) keymap.Action { return keymap.DefaultLayer(layer) }

// Layers is the 75% keymap.
var Layers = keymap.Layers{
	{
		{k(keymap.Grave), k(keymap.Kb1), k(keymap.Kb2), k(keymap.Kb3), k(keymap.Kb4), k(keymap.Kb5), k(keymap.KpMinus), k(keymap.KpSlash), k(keymap.KpAsterisk), k(keymap.Kb6), k(keymap.Kb7), k(keymap.Kb8), k(keymap.Kb9), k(keymap.Kb0), k(keymap.Minus)},
		{k(keymap.Tab), k(keymap.Q), k(keymap.W), k(keymap.E), k(keymap.R), k(keymap.T), k(keymap.Kp7), k(keymap.Kp8), k(keymap.Kp9), k(keymap.Y), k(keymap.U), k(keymap.I), k(keymap.O), k(keymap.P), k(keymap.LBracket)},
		{k(keymap.RBracket), k(keymap.A), k(keymap.S), k(keymap.D), k(keymap.F), k(keymap.G), k(keymap.Kp4), k(keymap.Kp5), k(keymap.Kp6), k(keymap.H), k(keymap.J), k(keymap.K), k(keymap.L), k(keymap.SColon), k(keymap.Quote)},
		{k(keymap.Equal), k(keymap.Z), k(keymap.X), k(keymap.C), k(keymap.V), k(keymap.B), k(keymap.Kp1), k(keymap.Kp2), k(keymap.Kp3), k(keymap.N), k(keymap.M), k(keymap.Comma), k(keymap.Dot), k(keymap.Slash), k(keymap.Bslash)},
		{__, __, k(keymap.LGui), k(keymap.LAlt), l1Space, k(keymap.LShift), k(keymap.Kp0), k(keymap.KpDot), k(keymap.KpPlus), k(keymap.RShift), cEnter, k(keymap.RAlt), k(keymap.BSpace), __, __},
	},
	{
		{k(keymap.F1), k(keymap.F2), k(keymap.F3), k(keymap.F4), k(keymap.F5), k(keymap.F6), __, __, __, k(keymap.F7), k(keymap.F8), k(keymap.F9), k(keymap.F10), k(keymap.F11), k(keymap.F12)},
		{__, __, __, __, __, __, __, __, __, __, __, k(keymap.Delete), __, __, __},
		{d(0), d(1), k(keymap.NumLock), __, k(keymap.Escape), __, __, __, __, k(keymap.CapsLock), k(keymap.Left), k(keymap.Down), k(keymap.Up), k(keymap.Right), __},
		{__, __, cut, cpy, paste, __, __, __, __, __, k(keymap.Home), k(keymap.PgDown), k(keymap.PgUp), k(keymap.End), __},
		{__, __, __, __, __, __, __, __, __, __, center, __, __, __, __},
	},
}
