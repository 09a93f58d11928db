package core

import "sync/atomic"

// Clock counts scheduler ticks since boot. The tick task advances it and
// any priority may read it.
type Clock struct {
	ticks atomic.Uint32
}

// Now returns the current tick count
func (c *Clock) Now() uint32 {
	return c.ticks.Load()
}

// Advance moves the clock forward by one tick and returns the new count
func (c *Clock) Advance() uint32 {
	return c.ticks.Add(1)
}

// TicksFromMS converts milliseconds to ticks at the given tick rate
func TicksFromMS(ms uint32, tickHz uint32) uint32 {
	return uint32(uint64(ms) * uint64(tickHz) / 1000)
}

// TicksToUS converts ticks at the given tick rate to microseconds
func TicksToUS(ticks uint32, tickHz uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / uint64(tickHz))
}
