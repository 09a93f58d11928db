//go:build stm32f103

package main

import (
	"machine"
)

var (
	debugUART    *machine.UART
	debugEnabled bool
)

// InitDebugUART initializes USART2 on PA2 (TX) and PA3 (RX) for trace dumps.
// USART1 shares PA9/PA10 with matrix columns.
// Baud rate: 115200
func InitDebugUART() {
	debugUART = machine.UART2

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.PA2,
		RX:       machine.PA3,
	})
	if err != nil {
		debugEnabled = false
		return
	}

	debugEnabled = true
}

// DebugPrintln writes a string to the debug UART with newline
func DebugPrintln(s string) {
	if !debugEnabled || debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
