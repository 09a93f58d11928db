package core

import "fmt"

// Priority is a static task priority. A task preempts any task running at a
// lower priority and is never preempted by one at the same or lower priority.
type Priority uint8

// Task priorities. Only two tiers exist.
const (
	PriorityIdle Priority = 0 // thread mode, no task running
	PriorityTick Priority = 1 // scan/debounce/layout/report
	PriorityUSB  Priority = 2 // USB device and class servicing
)

// MaxTasks is the size of the static task table
const MaxTasks = 4

// TaskID identifies a bound task
type TaskID uint8

type task struct {
	name     string
	priority Priority
	run      func()
	pending  bool
	active   bool
	triggers uint32
}

// Scheduler dispatches interrupt-bound tasks by static priority and tracks
// the running priority level used by Shared resources as a ceiling.
//
// On TinyGo every Trigger comes from an interrupt handler whose hardware
// priority matches the task's, so preemption is done by the NVIC and the
// pending path only runs after a critical section. On host builds Trigger
// emulates the same rules in software; it must be driven from one goroutine.
type Scheduler struct {
	tasks    [MaxTasks]task
	n        int
	level    Priority
	overruns uint32
	trace    *Trace
}

// NewScheduler creates a scheduler with an empty task table.
// trace may be nil.
func NewScheduler(trace *Trace) *Scheduler {
	return &Scheduler{trace: trace}
}

// Bind declares a task. Tasks are bound once at startup.
func (s *Scheduler) Bind(name string, prio Priority, run func()) (TaskID, error) {
	if prio != PriorityTick && prio != PriorityUSB {
		return 0, fmt.Errorf("task %s: priority %d: %w", name, prio, ErrPriority)
	}
	if s.n == MaxTasks {
		return 0, fmt.Errorf("task %s: %w", name, ErrTooManyTasks)
	}
	id := TaskID(s.n)
	s.tasks[id] = task{name: name, priority: prio, run: run}
	s.n++
	return id, nil
}

// Trigger signals the task's interrupt condition. The task runs immediately
// if its priority is above the running level, otherwise it stays pending
// until the level drops. A trigger that finds the task already pending is
// folded into it, as a hardware pending bit would be.
func (s *Scheduler) Trigger(id TaskID) {
	if int(id) >= s.n {
		return
	}
	state := disableInterrupts()
	t := &s.tasks[id]
	t.triggers++
	if t.pending || t.active {
		s.overrun(id)
	}
	t.pending = true
	restoreInterrupts(state)

	s.dispatch()
}

// Missed records a tick period that elapsed while the task was still
// running. On hardware the NVIC never re-enters an active handler, so the
// timer glue samples its own update flag after Trigger returns and reports
// the late period here.
func (s *Scheduler) Missed(id TaskID) {
	if int(id) >= s.n {
		return
	}
	state := disableInterrupts()
	s.overrun(id)
	restoreInterrupts(state)
}

// overrun counts a late tick. Called with interrupts masked.
func (s *Scheduler) overrun(id TaskID) {
	if s.tasks[id].priority != PriorityTick {
		return
	}
	s.overruns++
	if s.trace != nil {
		s.trace.record(EvtTickOverrun, uint32(id), s.overruns)
	}
}

// dispatch runs pending tasks above the current level, highest priority
// first, then in bind order.
func (s *Scheduler) dispatch() {
	for {
		state := disableInterrupts()
		id, ok := s.next()
		if !ok {
			restoreInterrupts(state)
			return
		}
		t := &s.tasks[id]
		t.pending = false
		t.active = true
		saved := s.level
		s.level = t.priority
		restoreInterrupts(state)

		t.run()

		state = disableInterrupts()
		t.active = false
		s.level = saved
		restoreInterrupts(state)
	}
}

// next finds the most urgent runnable task. Called with interrupts masked.
func (s *Scheduler) next() (TaskID, bool) {
	best := -1
	for i := 0; i < s.n; i++ {
		t := &s.tasks[i]
		if !t.pending || t.active || t.priority <= s.level {
			continue
		}
		if best < 0 || t.priority > s.tasks[best].priority {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return TaskID(best), true
}

// Level returns the priority currently running
func (s *Scheduler) Level() Priority {
	return s.level
}

// Pending reports whether the task is waiting to run
func (s *Scheduler) Pending(id TaskID) bool {
	if int(id) >= s.n {
		return false
	}
	return s.tasks[id].pending
}

// Triggers returns how many times the task was signalled
func (s *Scheduler) Triggers(id TaskID) uint32 {
	if int(id) >= s.n {
		return 0
	}
	return s.tasks[id].triggers
}

// Overruns counts tick triggers that arrived before the previous tick
// invocation finished.
func (s *Scheduler) Overruns() uint32 {
	return s.overruns
}

// Name returns the task name given to Bind
func (s *Scheduler) Name(id TaskID) string {
	if int(id) >= s.n {
		return ""
	}
	return s.tasks[id].name
}

// Shared is a resource accessed from more than one priority. Lock raises the
// running level to the resource's ceiling, the highest priority of any task
// that touches it, so no such task can run until the lock is released.
type Shared[T any] struct {
	sched   *Scheduler
	ceiling Priority
	value   T
}

// NewShared wraps value as a resource with the given ceiling
func NewShared[T any](s *Scheduler, ceiling Priority, value T) *Shared[T] {
	return &Shared[T]{sched: s, ceiling: ceiling, value: value}
}

// Lock runs fn with exclusive access to the resource. Tasks made runnable
// while the lock was held are dispatched on release.
func (r *Shared[T]) Lock(fn func(*T)) {
	state := disableInterrupts()
	saved := r.sched.level
	if r.ceiling > saved {
		r.sched.level = r.ceiling
	}
	fn(&r.value)
	r.sched.level = saved
	restoreInterrupts(state)

	r.sched.dispatch()
}

// Ceiling returns the resource's ceiling priority
func (r *Shared[T]) Ceiling() Priority {
	return r.ceiling
}
