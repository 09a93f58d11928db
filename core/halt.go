package core

// Halt stops the system after a fatal error. There is no supervisor to
// restart anything, so it records the error, flushes the trace through the
// installed writer, masks interrupts and spins. It never returns.
func Halt(t *Trace, err error) {
	if t != nil {
		t.Record(EvtHalt, 0, 0)
		if t.writer != nil && err != nil {
			t.writer("[HALT] " + err.Error())
		}
		t.Dump()
	}
	disableInterrupts()
	for {
	}
}
