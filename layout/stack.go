package layout

import "keygopher/matrix"

// StackSize is how many debounced events can wait for the layout engine.
const StackSize = 16

type stacked struct {
	ev matrix.Event
	at uint32 // tick the event was delivered on
}

// eventStack is a fixed-capacity FIFO of events not yet processed.
type eventStack struct {
	buf  [StackSize]stacked
	head int
	n    int
}

func (s *eventStack) full() bool { return s.n == StackSize }

func (s *eventStack) len() int { return s.n }

func (s *eventStack) push(e stacked) {
	s.buf[(s.head+s.n)%StackSize] = e
	s.n++
}

func (s *eventStack) pop() stacked {
	e := s.buf[s.head]
	s.head = (s.head + 1) % StackSize
	s.n--
	return e
}

// at returns the i-th oldest event
func (s *eventStack) at(i int) stacked {
	return s.buf[(s.head+i)%StackSize]
}
