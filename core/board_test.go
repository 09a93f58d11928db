package core

import (
	"errors"
	"testing"
)

func testBoard() BoardConfig {
	return BoardConfig{
		Name:        "test",
		Rows:        2,
		Cols:        3,
		ColPins:     []GPIOPin{1, 2, 3},
		RowPins:     []GPIOPin{10, 11},
		TickHz:      DefaultTickHz,
		SettleTicks: DefaultSettleTicks,
	}
}

func TestBoardValidate(t *testing.T) {
	if err := testBoard().Validate(); err != nil {
		t.Fatalf("Valid board rejected: %v", err)
	}

	testCases := []struct {
		name   string
		modify func(*BoardConfig)
		want   error
	}{
		{"no rows", func(b *BoardConfig) { b.Rows = 0 }, ErrMatrixDimension},
		{"too many cols", func(b *BoardConfig) { b.Cols = MaxCols + 1 }, ErrMatrixDimension},
		{"missing column pin", func(b *BoardConfig) { b.ColPins = b.ColPins[:2] }, ErrMatrixDimension},
		{"extra row pin", func(b *BoardConfig) { b.RowPins = append(b.RowPins, 12) }, ErrMatrixDimension},
		{"zero tick rate", func(b *BoardConfig) { b.TickHz = 0 }, ErrTickRate},
		{"tick rate too high", func(b *BoardConfig) { b.TickHz = 10000 }, ErrTickRate},
		{"zero settle", func(b *BoardConfig) { b.SettleTicks = 0 }, ErrSettleCount},
	}

	for _, tc := range testCases {
		b := testBoard()
		tc.modify(&b)
		if err := b.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if n := testBoard().Keys(); n != 6 {
		t.Errorf("Expected 6 keys, got %d", n)
	}
}

type fakeBackup struct {
	writes map[uint8]uint16
}

func (f *fakeBackup) WriteDataRegister(index uint8, value uint16) {
	f.writes[index] = value
}

func TestArmBootloader(t *testing.T) {
	b := &fakeBackup{writes: make(map[uint8]uint16)}
	if err := ArmBootloader(b); err != nil {
		t.Fatalf("ArmBootloader failed: %v", err)
	}
	if len(b.writes) != 1 || b.writes[9] != 0x424C {
		t.Errorf("Expected 0x424C in register 9, got %v", b.writes)
	}

	if err := ArmBootloader(nil); !errors.Is(err, ErrNilDriver) {
		t.Errorf("Expected ErrNilDriver, got %v", err)
	}
}

func TestTickConversions(t *testing.T) {
	if got := TicksFromMS(200, 1000); got != 200 {
		t.Errorf("TicksFromMS(200, 1000) = %d", got)
	}
	if got := TicksFromMS(5, 2000); got != 10 {
		t.Errorf("TicksFromMS(5, 2000) = %d", got)
	}
	if got := TicksToUS(5, 1000); got != 5000 {
		t.Errorf("TicksToUS(5, 1000) = %d", got)
	}
	if got := TicksToUS(4000000, 1000); got != 4000000000 {
		t.Errorf("TicksToUS overflowed: %d", got)
	}
}
