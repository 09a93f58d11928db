package core

// Bootloader re-entry handshake. The bootloader reads this backup data
// register after reset and stays in DFU mode when it holds the magic value.
const (
	BootloaderFlagRegister        = 9 // DR10 on STM32F1
	BootloaderFlagValue    uint16 = 0x424C
)

// BackupDomain gives access to battery-backed data registers.
type BackupDomain interface {
	// WriteDataRegister stores the low 16 bits of data register index.
	WriteDataRegister(index uint8, value uint16)
}

// ArmBootloader writes the bootloader re-entry flag. It must run on every
// boot before normal operation begins.
func ArmBootloader(b BackupDomain) error {
	if b == nil {
		return ErrNilDriver
	}
	b.WriteDataRegister(BootloaderFlagRegister, BootloaderFlagValue)
	return nil
}
