// Package firmware binds the matrix scanner, debouncer, layout engine and
// HID pipeline into scheduler tasks.
//
// Interrupt glue calls Scheduler().Trigger with TickTask() from the 1 kHz
// timer and with USBTxTask()/USBRxTask() from the USB controller. Everything
// the tick task touches except the USB pair is owned by its closure.
package firmware

import (
	"fmt"

	"keygopher/core"
	"keygopher/debounce"
	"keygopher/hid"
	"keygopher/keymap"
	"keygopher/layout"
	"keygopher/matrix"
	"keygopher/usb"
)

// Config is the build-time description of a keyboard.
type Config struct {
	Board  core.BoardConfig
	Layers keymap.Layers

	// GPIO drives the matrix and the Caps Lock indicator
	GPIO core.GPIODriver

	// Device is the USB device stack; Endpoint is the keyboard's interrupt
	// IN endpoint.
	Device   usb.Device
	Endpoint usb.Endpoint

	// Clock counts ticks. A trace stamped by the same clock lines up with
	// the layout's hold-tap timing. Created when nil.
	Clock *core.Clock

	// Trace receives post-mortem events. May be nil.
	Trace *core.Trace

	// OnFatal handles errors raised inside a task. Defaults to core.Halt.
	OnFatal func(error)
}

// Keyboard is a bound keyboard. It owns all pipeline state.
type Keyboard struct {
	sched    *core.Scheduler
	clock    *core.Clock
	trace    *core.Trace
	onFatal  func(error)
	scanner  *matrix.Scanner
	debounce *debounce.Debouncer
	layout   *layout.Layout
	leds     *hid.LEDs
	usb      *core.Shared[hid.USB]
	pipeline *hid.Pipeline

	grid  matrix.Grid
	codes [layout.MaxStates]keymap.KeyCode

	tickTask  core.TaskID
	usbTxTask core.TaskID
	usbRxTask core.TaskID
}

// New validates the configuration, configures the matrix and LED pins and
// binds the keyboard's tasks on a fresh scheduler. Any error is a
// configuration error and the firmware must not start.
func New(cfg Config) (*Keyboard, error) {
	if cfg.Device == nil {
		return nil, fmt.Errorf("firmware: usb device: %w", core.ErrNilDriver)
	}
	if err := cfg.Board.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Layers.Validate(cfg.Board); err != nil {
		return nil, err
	}

	scanner, err := matrix.NewScanner(cfg.GPIO, cfg.Board)
	if err != nil {
		return nil, err
	}
	leds, err := hid.NewLEDs(cfg.GPIO, cfg.Board.CapsLockPin, cfg.Board.CapsLockActiveLow)
	if err != nil {
		return nil, err
	}
	leds.SetTrace(cfg.Trace)

	k := &Keyboard{
		clock:    cfg.Clock,
		trace:    cfg.Trace,
		onFatal:  cfg.OnFatal,
		scanner:  scanner,
		debounce: debounce.New(cfg.Board.Rows, cfg.Board.Cols, cfg.Board.SettleTicks),
		layout:   layout.New(cfg.Layers),
		leds:     leds,
	}
	if k.clock == nil {
		k.clock = &core.Clock{}
	}
	if k.onFatal == nil {
		k.onFatal = func(err error) { core.Halt(k.trace, err) }
	}
	k.layout.SetTrace(cfg.Trace)

	k.sched = core.NewScheduler(cfg.Trace)
	k.usb = core.NewShared(k.sched, core.PriorityUSB, hid.USB{
		Device: cfg.Device,
		Class:  hid.NewKeyboard(cfg.Endpoint, leds),
	})
	k.pipeline = hid.NewPipeline(k.usb, cfg.Trace)

	if k.tickTask, err = k.sched.Bind("tick", core.PriorityTick, k.tick); err != nil {
		return nil, err
	}
	if k.usbTxTask, err = k.sched.Bind("usb_tx", core.PriorityUSB, k.poll); err != nil {
		return nil, err
	}
	if k.usbRxTask, err = k.sched.Bind("usb_rx", core.PriorityUSB, k.poll); err != nil {
		return nil, err
	}
	return k, nil
}

// tick is one pass of the pipeline
func (k *Keyboard) tick() {
	k.clock.Advance()

	if err := k.scanner.Scan(&k.grid); err != nil {
		k.onFatal(fmt.Errorf("firmware: scan: %w", err))
		return
	}
	for _, ev := range k.debounce.Update(&k.grid) {
		k.layout.Event(ev)
	}
	k.layout.Tick()
	k.pipeline.Send(k.layout.KeyCodes(k.codes[:0]))
}

func (k *Keyboard) poll() {
	k.usb.Lock(func(u *hid.USB) {
		u.Poll()
	})
}

// Scheduler returns the scheduler the tasks are bound to
func (k *Keyboard) Scheduler() *core.Scheduler {
	return k.sched
}

// TickTask returns the task bound to the periodic timer
func (k *Keyboard) TickTask() core.TaskID {
	return k.tickTask
}

// USBTxTask returns the task bound to IN transfer completion
func (k *Keyboard) USBTxTask() core.TaskID {
	return k.usbTxTask
}

// USBRxTask returns the task bound to OUT transfer reception
func (k *Keyboard) USBRxTask() core.TaskID {
	return k.usbRxTask
}

// Clock returns the tick clock
func (k *Keyboard) Clock() *core.Clock {
	return k.clock
}

// Layout returns the layout engine. Only safe to inspect between ticks.
func (k *Keyboard) Layout() *layout.Layout {
	return k.layout
}

// Pipeline returns the HID pipeline
func (k *Keyboard) Pipeline() *hid.Pipeline {
	return k.pipeline
}

// LEDs returns the Caps Lock indicator
func (k *Keyboard) LEDs() *hid.LEDs {
	return k.leds
}

// USB returns the shared USB device and class pair
func (k *Keyboard) USB() *core.Shared[hid.USB] {
	return k.usb
}
