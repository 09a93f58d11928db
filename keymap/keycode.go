package keymap

// KeyCode is a USB HID Keyboard/Keypad usage ID (HID Usage Tables, page 0x07).
type KeyCode uint8

// Keyboard usages.
const (
	No            KeyCode = 0x00
	ErrorRollOver KeyCode = 0x01
	A             KeyCode = 0x04
	B             KeyCode = 0x05
	C             KeyCode = 0x06
	D             KeyCode = 0x07
	E             KeyCode = 0x08
	F             KeyCode = 0x09
	G             KeyCode = 0x0A
	H             KeyCode = 0x0B
	I             KeyCode = 0x0C
	J             KeyCode = 0x0D
	K             KeyCode = 0x0E
	L             KeyCode = 0x0F
	M             KeyCode = 0x10
	N             KeyCode = 0x11
	O             KeyCode = 0x12
	P             KeyCode = 0x13
	Q             KeyCode = 0x14
	R             KeyCode = 0x15
	S             KeyCode = 0x16
	T             KeyCode = 0x17
	U             KeyCode = 0x18
	V             KeyCode = 0x19
	W             KeyCode = 0x1A
	X             KeyCode = 0x1B
	Y             KeyCode = 0x1C
	Z             KeyCode = 0x1D
	Kb1           KeyCode = 0x1E
	Kb2           KeyCode = 0x1F
	Kb3           KeyCode = 0x20
	Kb4           KeyCode = 0x21
	Kb5           KeyCode = 0x22
	Kb6           KeyCode = 0x23
	Kb7           KeyCode = 0x24
	Kb8           KeyCode = 0x25
	Kb9           KeyCode = 0x26
	Kb0           KeyCode = 0x27
	Enter         KeyCode = 0x28
	Escape        KeyCode = 0x29
	BSpace        KeyCode = 0x2A
	Tab           KeyCode = 0x2B
	Space         KeyCode = 0x2C
	Minus         KeyCode = 0x2D
	Equal         KeyCode = 0x2E
	LBracket      KeyCode = 0x2F
	RBracket      KeyCode = 0x30
	Bslash        KeyCode = 0x31
	NonUsHash     KeyCode = 0x32
	SColon        KeyCode = 0x33
	Quote         KeyCode = 0x34
	Grave         KeyCode = 0x35
	Comma         KeyCode = 0x36
	Dot           KeyCode = 0x37
	Slash         KeyCode = 0x38
	CapsLock      KeyCode = 0x39
	F1            KeyCode = 0x3A
	F2            KeyCode = 0x3B
	F3            KeyCode = 0x3C
	F4            KeyCode = 0x3D
	F5            KeyCode = 0x3E
	F6            KeyCode = 0x3F
	F7            KeyCode = 0x40
	F8            KeyCode = 0x41
	F9            KeyCode = 0x42
	F10           KeyCode = 0x43
	F11           KeyCode = 0x44
	F12           KeyCode = 0x45
	PScreen       KeyCode = 0x46
	ScrollLock    KeyCode = 0x47
	Pause         KeyCode = 0x48
	Insert        KeyCode = 0x49
	Home          KeyCode = 0x4A
	PgUp          KeyCode = 0x4B
	Delete        KeyCode = 0x4C
	End           KeyCode = 0x4D
	PgDown        KeyCode = 0x4E
	Right         KeyCode = 0x4F
	Left          KeyCode = 0x50
	Down          KeyCode = 0x51
	Up            KeyCode = 0x52
	NumLock       KeyCode = 0x53
	KpSlash       KeyCode = 0x54
	KpAsterisk    KeyCode = 0x55
	KpMinus       KeyCode = 0x56
	KpPlus        KeyCode = 0x57
	KpEnter       KeyCode = 0x58
	Kp1           KeyCode = 0x59
	Kp2           KeyCode = 0x5A
	Kp3           KeyCode = 0x5B
	Kp4           KeyCode = 0x5C
	Kp5           KeyCode = 0x5D
	Kp6           KeyCode = 0x5E
	Kp7           KeyCode = 0x5F
	Kp8           KeyCode = 0x60
	Kp9           KeyCode = 0x61
	Kp0           KeyCode = 0x62
	KpDot         KeyCode = 0x63
	NonUsBslash   KeyCode = 0x64
	Application   KeyCode = 0x65
	Undo          KeyCode = 0x7A
	LCtrl         KeyCode = 0xE0
	LShift        KeyCode = 0xE1
	LAlt          KeyCode = 0xE2
	LGui          KeyCode = 0xE3
	RCtrl         KeyCode = 0xE4
	RShift        KeyCode = 0xE5
	RAlt          KeyCode = 0xE6
	RGui          KeyCode = 0xE7
)

// IsModifier reports whether the code is one of the eight modifier usages
// carried in the report's bitmask byte.
func (k KeyCode) IsModifier() bool {
	return k >= LCtrl && k <= RGui
}

// ModifierBit returns the report bitmask bit for a modifier, or 0.
func (k KeyCode) ModifierBit() uint8 {
	if !k.IsModifier() {
		return 0
	}
	return 1 << (k - LCtrl)
}
