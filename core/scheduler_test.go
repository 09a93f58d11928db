package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSchedulerBind(t *testing.T) {
	s := NewScheduler(nil)

	if _, err := s.Bind("idle", PriorityIdle, func() {}); !errors.Is(err, ErrPriority) {
		t.Errorf("Expected ErrPriority for idle priority, got %v", err)
	}
	if _, err := s.Bind("nmi", 3, func() {}); !errors.Is(err, ErrPriority) {
		t.Errorf("Expected ErrPriority for priority 3, got %v", err)
	}

	for i := 0; i < MaxTasks; i++ {
		id, err := s.Bind("task", PriorityTick, func() {})
		if err != nil {
			t.Fatalf("Bind %d failed: %v", i, err)
		}
		if int(id) != i {
			t.Errorf("Expected task ID %d, got %d", i, id)
		}
	}
	if _, err := s.Bind("extra", PriorityUSB, func() {}); !errors.Is(err, ErrTooManyTasks) {
		t.Errorf("Expected ErrTooManyTasks, got %v", err)
	}
}

func TestSchedulerPreemption(t *testing.T) {
	s := NewScheduler(nil)
	var order []string
	var usb TaskID

	tick, _ := s.Bind("tick", PriorityTick, func() {
		order = append(order, "tick start")
		s.Trigger(usb)
		order = append(order, "tick end")
	})
	usb, _ = s.Bind("usb", PriorityUSB, func() {
		order = append(order, "usb")
	})

	s.Trigger(tick)

	want := []string{"tick start", "usb", "tick end"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("USB should preempt tick (-want +got):\n%s", diff)
	}
	if s.Level() != PriorityIdle {
		t.Errorf("Expected idle level after dispatch, got %d", s.Level())
	}
}

func TestSchedulerNoPreemptionFromBelow(t *testing.T) {
	s := NewScheduler(nil)
	var order []string
	var tick TaskID

	usb, _ := s.Bind("usb", PriorityUSB, func() {
		order = append(order, "usb start")
		s.Trigger(tick)
		if !s.Pending(tick) {
			t.Error("Tick should be pending while USB runs")
		}
		order = append(order, "usb end")
	})
	tick, _ = s.Bind("tick", PriorityTick, func() {
		order = append(order, "tick")
	})

	s.Trigger(usb)

	want := []string{"usb start", "usb end", "tick"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSharedLockDefersUSB(t *testing.T) {
	s := NewScheduler(nil)
	var order []string
	var usb TaskID

	shared := NewShared(s, PriorityUSB, 0)
	tick, _ := s.Bind("tick", PriorityTick, func() {
		shared.Lock(func(v *int) {
			*v = 1
			s.Trigger(usb)
			order = append(order, "locked")
			if s.Level() != PriorityUSB {
				t.Errorf("Expected level raised to ceiling, got %d", s.Level())
			}
		})
		order = append(order, "unlocked")
	})
	usb, _ = s.Bind("usb", PriorityUSB, func() {
		shared.Lock(func(v *int) {
			order = append(order, "usb")
			if *v != 1 {
				t.Errorf("USB saw value %d", *v)
			}
		})
	})

	s.Trigger(tick)

	want := []string{"locked", "usb", "unlocked"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if shared.Ceiling() != PriorityUSB {
		t.Errorf("Expected ceiling %d, got %d", PriorityUSB, shared.Ceiling())
	}
}

func TestSchedulerPendingFoldsTriggers(t *testing.T) {
	s := NewScheduler(nil)
	runs := 0
	var usb TaskID

	usb, _ = s.Bind("usb", PriorityUSB, func() { runs++ })
	shared := NewShared(s, PriorityUSB, struct{}{})
	shared.Lock(func(*struct{}) {
		s.Trigger(usb)
		s.Trigger(usb)
	})

	if runs != 1 {
		t.Errorf("Expected one run for two pending triggers, got %d", runs)
	}
	if s.Triggers(usb) != 2 {
		t.Errorf("Expected 2 triggers counted, got %d", s.Triggers(usb))
	}
}

func TestSchedulerTickOverrun(t *testing.T) {
	trace := NewTrace(nil)
	s := NewScheduler(trace)
	var tick TaskID
	nested := false

	tick, _ = s.Bind("tick", PriorityTick, func() {
		if !nested {
			nested = true
			// The next timer interrupt fires before this one finished
			s.Trigger(tick)
		}
	})

	s.Trigger(tick)

	if s.Overruns() != 1 {
		t.Errorf("Expected 1 overrun, got %d", s.Overruns())
	}
	if trace.Count(EvtTickOverrun) != 1 {
		t.Errorf("Expected overrun in trace")
	}
	if s.Triggers(tick) != 2 {
		t.Errorf("Expected 2 triggers, got %d", s.Triggers(tick))
	}
	if s.Name(tick) != "tick" {
		t.Errorf("Expected name 'tick', got '%s'", s.Name(tick))
	}
}

func TestSchedulerMissedTick(t *testing.T) {
	trace := NewTrace(nil)
	s := NewScheduler(trace)
	tick, _ := s.Bind("tick", PriorityTick, func() {})
	usb, _ := s.Bind("usb", PriorityUSB, func() {})

	s.Trigger(tick)
	// The timer flagged another period while the tick ran
	s.Missed(tick)
	s.Missed(usb)
	s.Missed(TaskID(MaxTasks))

	if s.Overruns() != 1 {
		t.Errorf("Expected 1 overrun, got %d", s.Overruns())
	}
	events := trace.Events(nil)
	if len(events) != 1 || events[0].EventType != EvtTickOverrun || events[0].Value1 != uint32(tick) {
		t.Errorf("Unexpected trace %+v", events)
	}
}
