//go:build stm32f103 && !kb75

package main

import (
	"keygopher/boards/kb60"
	"keygopher/core"
)

var layers = kb60.Layers

func board() core.BoardConfig {
	return kb60.Board()
}
