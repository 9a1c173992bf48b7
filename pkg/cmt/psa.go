package cmt

import (
	"fmt"
	"sync/atomic"
)

// DefaultPSAPeriodMs is the default process status sample window.
const DefaultPSAPeriodMs = 5000

// ProcStatus is the process status of a core over one sample window.
type ProcStatus struct {
	Core          CoreID
	WindowStartMs uint32
	WindowMs      uint32
	// ActiveUs is time spent in message handlers.
	ActiveUs uint64
	// IdleUs is time spent in idle functions.
	IdleUs     uint64
	Retrieved  uint32
	IdlePasses uint32
	TempC      float32
}

func (p ProcStatus) perSec(v uint64) float64 {
	if p.WindowMs == 0 {
		return 0
	}
	return float64(v) * 1000 / float64(p.WindowMs)
}

// RetrievedPerSec is the message rate.
func (p ProcStatus) RetrievedPerSec() float64 {
	return p.perSec(uint64(p.Retrieved))
}

// IdlePassesPerSec is the idle function rate.
func (p ProcStatus) IdlePassesPerSec() float64 {
	return p.perSec(uint64(p.IdlePasses))
}

// ActiveUsPerSec is handler time per second of window.
func (p ProcStatus) ActiveUsPerSec() float64 {
	return p.perSec(p.ActiveUs)
}

// IdleUsPerSec is idle function time per second of window.
func (p ProcStatus) IdleUsPerSec() float64 {
	return p.perSec(p.IdleUs)
}

func (p ProcStatus) String() string {
	return fmt.Sprintf("%s: %.1f msg/s, %.0f idle/s, active %.0fus/s, window %dms",
		p.Core, p.RetrievedPerSec(), p.IdlePassesPerSec(), p.ActiveUsPerSec(), p.WindowMs)
}

// procStatusAccum accumulates into cur from the owning loop only; the last
// completed window is published in last for anyone to read.
type procStatusAccum struct {
	period uint32
	temp   func() float32
	cur    ProcStatus
	last   atomic.Value
}

func (a *procStatusAccum) init(id CoreID, period uint32, temp func() float32) {
	if period == 0 {
		period = DefaultPSAPeriodMs
	}
	a.period, a.temp = period, temp
	a.cur = ProcStatus{Core: id}
	a.last.Store(ProcStatus{Core: id})
}

func (a *procStatusAccum) start(nowMs uint32) {
	a.cur.WindowStartMs = nowMs
}

func (a *procStatusAccum) retrieved(us uint64) {
	a.cur.ActiveUs += us
	a.cur.Retrieved++
}

func (a *procStatusAccum) idlePass(us uint64) {
	a.cur.IdleUs += us
	a.cur.IdlePasses++
}

// rotate closes the window if the period has elapsed.
func (a *procStatusAccum) rotate(nowMs uint32) bool {
	elapsed := nowMs - a.cur.WindowStartMs
	if elapsed < a.period {
		return false
	}
	done := a.cur
	done.WindowMs = elapsed
	if a.temp != nil {
		done.TempC = a.temp()
	}
	a.last.Store(done)
	a.cur = ProcStatus{Core: done.Core, WindowStartMs: nowMs}
	return true
}

func (a *procStatusAccum) sample() ProcStatus {
	return a.last.Load().(ProcStatus)
}
