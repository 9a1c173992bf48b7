package cmt

import (
	"sync/atomic"
	"time"
)

// Clock supplies monotonic timestamps and a hard (blocking) sleep.
type Clock interface {
	// NowMs returns milliseconds since boot. It wraps after ~49 days.
	NowMs() uint32
	// NowUs returns microseconds since boot.
	NowUs() uint64
	// SleepMs blocks the calling core. Only valid before the loops run.
	SleepMs(ms int32)
}

type systemClock struct {
	boot time.Time
}

// NewSystemClock creates a Clock counting from now.
func NewSystemClock() Clock {
	return &systemClock{boot: time.Now()}
}

func (c *systemClock) NowUs() uint64 {
	return uint64(time.Since(c.boot) / time.Microsecond)
}

func (c *systemClock) NowMs() uint32 {
	return uint32(c.NowUs() / 1000)
}

func (c *systemClock) SleepMs(ms int32) {
	if ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
}

// ManualClock is a Clock which only moves when told to.
// SleepMs advances the clock instead of blocking.
type ManualClock struct {
	us uint64
}

// NewManualClock creates a ManualClock at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// NowUs implements Clock.
func (c *ManualClock) NowUs() uint64 {
	return atomic.LoadUint64(&c.us)
}

// NowMs implements Clock.
func (c *ManualClock) NowMs() uint32 {
	return uint32(c.NowUs() / 1000)
}

// SleepMs implements Clock.
func (c *ManualClock) SleepMs(ms int32) {
	if ms > 0 {
		c.AdvanceMs(uint32(ms))
	}
}

// Advance moves the clock forward.
func (c *ManualClock) Advance(d time.Duration) {
	atomic.AddUint64(&c.us, uint64(d/time.Microsecond))
}

// AdvanceMs moves the clock forward by milliseconds.
func (c *ManualClock) AdvanceMs(ms uint32) {
	atomic.AddUint64(&c.us, uint64(ms)*1000)
}

// msElapsed reports whether due has been reached at now, tolerating wrap.
func msElapsed(now, due uint32) bool {
	return int32(now-due) >= 0
}
