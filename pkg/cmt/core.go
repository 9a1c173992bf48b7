package cmt

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/golang/glog"
)

// CoreID identifies a core, which is also its hardware core number.
type CoreID uint8

// The two cores.
const (
	BackEnd  CoreID = 0
	FrontEnd CoreID = 1

	NumCores = 2
)

// String implements fmt.Stringer.
func (id CoreID) String() string {
	switch id {
	case BackEnd:
		return "be"
	case FrontEnd:
		return "ui"
	}
	return fmt.Sprintf("core%d", uint8(id))
}

type coreCtxKey struct{}

// WithCore marks ctx as running on the core. Whatever launches the goroutine
// acting as a hardware core tags its context with this.
func WithCore(ctx context.Context, id CoreID) context.Context {
	return context.WithValue(ctx, coreCtxKey{}, id)
}

// CoreIDFrom returns the core ctx is running on.
func CoreIDFrom(ctx context.Context) (CoreID, bool) {
	id, ok := ctx.Value(coreCtxKey{}).(CoreID)
	return id, ok
}

// Core is one of the two execution contexts. It owns its inbound channel,
// its scheduler and its process status.
type Core struct {
	id    CoreID
	sys   *System
	in    *Channel
	sched *Scheduler
	psa   procStatusAccum

	started int32
	running int32
}

func newCore(sys *System, id CoreID, opts *Options) *Core {
	c := &Core{id: id, sys: sys}
	c.in = NewChannel(id.String(), opts.ChannelDepth, sys.clock)
	c.sched = newScheduler(opts.SchedSlots, sys.clock, c.in)
	c.psa.init(id, opts.PSAPeriodMs, opts.TempSensor)
	return c
}

// ID returns the core ID.
func (c *Core) ID() CoreID {
	return c.id
}

// System returns the system the core belongs to.
func (c *Core) System() *System {
	return c.sys
}

// Chan returns the inbound channel.
func (c *Core) Chan() *Channel {
	return c.in
}

// Scheduler returns the core's scheduler.
func (c *Core) Scheduler() *Scheduler {
	return c.sched
}

// Running reports whether the message loop is running.
func (c *Core) Running() bool {
	return atomic.LoadInt32(&c.running) != 0
}

// Post posts msg into this core, blocking while the channel is full.
func (c *Core) Post(msg Msg) {
	c.in.PostBlocking(msg)
}

// PostNoWait posts msg into this core without blocking.
func (c *Core) PostNoWait(msg Msg) error {
	return c.in.PostNoWait(msg)
}

// ScheduleMsgIn posts msg into this core after ms milliseconds.
func (c *Core) ScheduleMsgIn(ms int32, msg Msg) error {
	return c.sched.ScheduleIn(ms, msg)
}

// SleepMs calls fn(userData) after ms milliseconds on this core. Before the
// message loop runs there is nothing to defer into, so it sleeps (blocking
// the caller) and calls fn right away.
func (c *Core) SleepMs(ms int32, fn SleepFunc, userData interface{}) error {
	if !c.Running() {
		c.sys.clock.SleepMs(ms)
		fn(userData)
		return nil
	}
	return c.sched.ScheduleIn(ms, Msg{ID: MsgCmtSleep, Data: Sleep{Fn: fn, UserData: userData}})
}

// ProcStatus returns the status of the last completed sample window.
func (c *Core) ProcStatus() ProcStatus {
	return c.psa.sample()
}

// HandleSleep is the handler for MsgCmtSleep. Every loop that may be asked
// to SleepMs must bind it.
func HandleSleep(c *Core, msg *Msg) {
	if s, ok := msg.Data.(Sleep); ok && s.Fn != nil {
		s.Fn(s.UserData)
	}
}

// SleepHandlerEntry binds HandleSleep.
var SleepHandlerEntry = HandlerEntry{ID: MsgCmtSleep, Handler: HandleMsgFunc(HandleSleep)}

// MessageLoop runs the message loop of this core until ctx is done.
// It must be called once, from the goroutine acting as this core (see
// WithCore); anything else is a programming error and panics.
func (c *Core) MessageLoop(ctx context.Context, lc *LoopContext) error {
	if id, ok := CoreIDFrom(ctx); !ok || id != c.id {
		panic(&InvariantError{Core: c.id, Reason: "message loop started from another core"})
	}
	if !atomic.CompareAndSwapInt32(&c.started, 0, 1) {
		panic(&InvariantError{Core: c.id, Reason: "message loop already started"})
	}
	idle := NewIdleRotation(lc.IdleFuncs...)
	c.psa.start(c.sys.clock.NowMs())
	atomic.StoreInt32(&c.running, 1)
	defer atomic.StoreInt32(&c.running, 0)
	glog.Infof("core %s: message loop started", c.id)
	for {
		select {
		case <-ctx.Done():
			glog.Infof("core %s: message loop stopped", c.id)
			return ctx.Err()
		default:
		}
		c.step(lc.Handlers, idle)
	}
}

func (c *Core) step(handlers HandlerTable, idle *IdleRotation) {
	clock := c.sys.clock
	start := clock.NowUs()
	if c.in.Len() > 0 {
		msg := c.in.GetBlocking()
		c.dispatch(handlers, &msg)
		c.psa.retrieved(clock.NowUs() - start)
	} else {
		if idle.Step(c) {
			c.psa.idlePass(clock.NowUs() - start)
		}
		runtime.Gosched()
	}
	c.sched.fire()
	c.psa.rotate(clock.NowMs())
}

func (c *Core) dispatch(handlers HandlerTable, msg *Msg) {
	h := handlers.Lookup(msg.ID)
	if h == nil {
		glog.V(1).Infof("core %s: no handler for %s, dropped", c.id, msg.ID)
		msg.release()
		return
	}
	glog.V(3).Infof("core %s: dispatch %s", c.id, msg)
	h.HandleMsg(c, msg)
}
