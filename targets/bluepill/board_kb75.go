//go:build stm32f103 && kb75

package main

import (
	"keygopher/boards/kb75"
	"keygopher/core"
)

var layers = kb75.Layers

func board() core.BoardConfig {
	return kb75.Board()
}
