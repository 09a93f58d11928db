package firmware

import (
	"errors"
	"testing"

	softhid "github.com/ardnew/softusb/device/class/hid"
	"github.com/google/go-cmp/cmp"

	"keygopher/boards"
	"keygopher/boards/kb60"
	"keygopher/core"
	"keygopher/hid"
	"keygopher/keymap"
	"keygopher/matrix"
	"keygopher/usb"
)

type fakeBoard struct {
	board   core.BoardConfig
	levels  map[core.GPIOPin]bool
	closed  map[matrix.Key]bool
	readErr error
}

func newFakeBoard(board core.BoardConfig) *fakeBoard {
	return &fakeBoard{
		board:  board,
		levels: make(map[core.GPIOPin]bool),
		closed: make(map[matrix.Key]bool),
	}
}

func (f *fakeBoard) ConfigureOutput(pin core.GPIOPin) error      { return nil }
func (f *fakeBoard) ConfigureInputPullUp(pin core.GPIOPin) error { return nil }

func (f *fakeBoard) SetPin(pin core.GPIOPin, value bool) error {
	f.levels[pin] = value
	return nil
}

func (f *fakeBoard) GetPin(pin core.GPIOPin) (bool, error) {
	if f.readErr != nil {
		return false, f.readErr
	}
	for c, colPin := range f.board.ColPins {
		if colPin != pin {
			continue
		}
		for r, rowPin := range f.board.RowPins {
			if !f.levels[rowPin] && f.closed[matrix.Key{Row: uint8(r), Col: uint8(c)}] {
				return false, nil
			}
		}
	}
	return true, nil
}

type fakeEndpoint struct {
	packets [][]byte
}

func (e *fakeEndpoint) Write(p []byte) (int, error) {
	e.packets = append(e.packets, append([]byte(nil), p...))
	return len(p), nil
}

type fakeDevice struct {
	output []byte
}

func (d *fakeDevice) Poll(class usb.Class) bool {
	if d.output == nil {
		return false
	}
	class.(usb.OutputHandler).HandleOutputReport(d.output)
	d.output = nil
	return true
}

type rig struct {
	kb    *Keyboard
	gpio  *fakeBoard
	ep    *fakeEndpoint
	dev   *fakeDevice
	fatal error
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		gpio: newFakeBoard(kb60.Board()),
		ep:   &fakeEndpoint{},
		dev:  &fakeDevice{},
	}
	kb, err := New(Config{
		Board:    kb60.Board(),
		Layers:   kb60.Layers,
		GPIO:     r.gpio,
		Device:   r.dev,
		Endpoint: r.ep,
		Trace:    core.NewTrace(nil),
		OnFatal:  func(err error) { r.fatal = err },
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	r.kb = kb
	return r
}

func (r *rig) tick(n int) {
	for i := 0; i < n; i++ {
		r.kb.Scheduler().Trigger(r.kb.TickTask())
	}
}

func report(codes ...keymap.KeyCode) []byte {
	rep := hid.NewReport(codes)
	return rep[:]
}

func TestKeyPressProducesReport(t *testing.T) {
	r := newRig(t)
	r.gpio.closed[matrix.Key{Row: 1, Col: 1}] = true

	r.tick(4)
	if len(r.ep.packets) != 0 {
		t.Fatalf("Report sent before debounce settled: %v", r.ep.packets)
	}
	r.tick(1)
	if diff := cmp.Diff([][]byte{report(keymap.Q)}, r.ep.packets); diff != "" {
		t.Fatalf("press report mismatch (-want +got):\n%s", diff)
	}

	// Unchanged state sends nothing
	r.tick(50)
	if len(r.ep.packets) != 1 {
		t.Errorf("Expected 1 packet while held, got %d", len(r.ep.packets))
	}

	r.gpio.closed = make(map[matrix.Key]bool)
	r.tick(5)
	want := [][]byte{report(keymap.Q), report()}
	if diff := cmp.Diff(want, r.ep.packets); diff != "" {
		t.Errorf("release report mismatch (-want +got):\n%s", diff)
	}
	if r.kb.Clock().Now() != 60 {
		t.Errorf("Expected clock 60, got %d", r.kb.Clock().Now())
	}
}

func TestSpaceHoldNeverSendsSpace(t *testing.T) {
	r := newRig(t)
	r.gpio.closed[matrix.Key{Row: 4, Col: 4}] = true

	// Debounce confirms the press on tick 5, stamped with the 4 ticks the
	// layout has completed, so the hold resolves on tick 204.
	r.tick(203)
	if r.kb.Layout().CurrentLayer() != 0 {
		t.Fatalf("Layer %d active early", r.kb.Layout().CurrentLayer())
	}
	r.tick(1)
	if r.kb.Layout().CurrentLayer() != 1 {
		t.Fatalf("Expected layer 1, got %d", r.kb.Layout().CurrentLayer())
	}

	r.gpio.closed[matrix.Key{Row: 0, Col: 0}] = true
	r.tick(5)
	r.gpio.closed = make(map[matrix.Key]bool)
	r.tick(10)

	want := [][]byte{report(keymap.F1), report()}
	if diff := cmp.Diff(want, r.ep.packets); diff != "" {
		t.Errorf("packets mismatch (-want +got):\n%s", diff)
	}
}

func TestCapsLockFromHost(t *testing.T) {
	r := newRig(t)
	led := boards.CapsLockLED
	if !r.gpio.levels[led] {
		t.Fatal("Active-low LED should start off (high)")
	}

	r.dev.output = []byte{softhid.LEDCapsLock}
	r.kb.Scheduler().Trigger(r.kb.USBRxTask())
	if !r.kb.LEDs().CapsLock() || r.gpio.levels[led] {
		t.Error("Caps Lock LED not lit")
	}

	r.dev.output = []byte{0}
	r.kb.Scheduler().Trigger(r.kb.USBTxTask())
	if r.kb.LEDs().CapsLock() || !r.gpio.levels[led] {
		t.Error("Caps Lock LED not cleared")
	}
}

func TestScanErrorIsFatal(t *testing.T) {
	r := newRig(t)
	r.gpio.readErr = errors.New("expander nak")
	r.tick(1)
	if !errors.Is(r.fatal, r.gpio.readErr) {
		t.Errorf("Expected fatal scan error, got %v", r.fatal)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	board := kb60.Board()
	gpio := newFakeBoard(board)

	if _, err := New(Config{Board: board, Layers: kb60.Layers, GPIO: gpio}); !errors.Is(err, core.ErrNilDriver) {
		t.Errorf("Expected ErrNilDriver without a USB device, got %v", err)
	}

	narrow := board
	narrow.Cols = 11
	narrow.ColPins = board.ColPins[:11]
	_, err := New(Config{Board: narrow, Layers: kb60.Layers, GPIO: gpio, Device: &fakeDevice{}})
	if !errors.Is(err, core.ErrMatrixDimension) {
		t.Errorf("Expected ErrMatrixDimension for a mismatched keymap, got %v", err)
	}
}

func TestTaskBinding(t *testing.T) {
	r := newRig(t)
	s := r.kb.Scheduler()
	names := []string{s.Name(r.kb.TickTask()), s.Name(r.kb.USBTxTask()), s.Name(r.kb.USBRxTask())}
	if diff := cmp.Diff([]string{"tick", "usb_tx", "usb_rx"}, names); diff != "" {
		t.Errorf("task names mismatch (-want +got):\n%s", diff)
	}
	if r.kb.USB().Ceiling() != core.PriorityUSB {
		t.Errorf("USB pair ceiling %d", r.kb.USB().Ceiling())
	}
}
