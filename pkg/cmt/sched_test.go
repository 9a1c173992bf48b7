package cmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type schedTestEnv struct {
	t     *testing.T
	clock *ManualClock
	out   *Channel
	sched *Scheduler
}

func newSchedTestEnv(t *testing.T, slots int) *schedTestEnv {
	env := &schedTestEnv{t: t, clock: NewManualClock()}
	env.out = NewChannel("sched", 8, env.clock)
	env.sched = newScheduler(slots, env.clock, env.out)
	return env
}

func (e *schedTestEnv) drain() (ids []MsgID) {
	for {
		msg, ok := e.out.GetNoWait()
		if !ok {
			return
		}
		ids = append(ids, msg.ID)
	}
}

func TestScheduleCancelRoundTrip(t *testing.T) {
	env := newSchedTestEnv(t, 4)
	require.NoError(t, env.sched.ScheduleIn(100, MustMsg(MsgBETest, TimeUs(0))))
	require.True(t, env.sched.Exists(MsgBETest))
	require.True(t, env.sched.Cancel(MsgBETest))
	require.False(t, env.sched.Exists(MsgBETest))
	require.False(t, env.sched.Cancel(MsgBETest))

	env.clock.AdvanceMs(1000)
	require.Zero(t, env.sched.fire())
	require.Empty(t, env.drain())
}

func TestCancelAfterFire(t *testing.T) {
	env := newSchedTestEnv(t, 4)
	require.NoError(t, env.sched.ScheduleIn(10, MustMsg(MsgBETest, TimeUs(0))))
	env.clock.AdvanceMs(10)
	require.Equal(t, 1, env.sched.fire())

	require.Equal(t, 1, env.out.Len())
	require.False(t, env.sched.Exists(MsgBETest))
	require.False(t, env.sched.Cancel(MsgBETest))
	require.Equal(t, []MsgID{MsgBETest}, env.drain())
}

func TestScheduleFiringBound(t *testing.T) {
	env := newSchedTestEnv(t, 4)
	env.clock.AdvanceMs(5)
	require.NoError(t, env.sched.ScheduleIn(100, MustMsg(MsgBETest, TimeUs(0))))

	env.clock.AdvanceMs(99)
	require.Zero(t, env.sched.fire())
	require.Empty(t, env.drain())

	env.clock.AdvanceMs(1)
	require.Equal(t, 1, env.sched.fire())
	require.Equal(t, []MsgID{MsgBETest}, env.drain())

	env.clock.AdvanceMs(1000)
	require.Zero(t, env.sched.fire())
	require.Empty(t, env.drain())
	require.Zero(t, env.sched.Waiting())
}

func TestScheduleClockWrap(t *testing.T) {
	env := newSchedTestEnv(t, 2)
	env.clock.AdvanceMs(0xffffffff - 10)
	require.NoError(t, env.sched.ScheduleIn(20, MustMsg(MsgBEStatusPulse, TimeMs(0))))
	env.clock.AdvanceMs(15)
	require.Zero(t, env.sched.fire())
	env.clock.AdvanceMs(5)
	require.Equal(t, 1, env.sched.fire())
}

func TestScheduleConflictAndFull(t *testing.T) {
	env := newSchedTestEnv(t, 3)
	require.NoError(t, env.sched.ScheduleIn(10, MustMsg(MsgBETest, TimeUs(0))))
	require.Equal(t, ErrScheduleConflict, env.sched.ScheduleIn(20, MustMsg(MsgBETest, TimeUs(1))))

	fn := func(interface{}) {}
	require.NoError(t, env.sched.ScheduleIn(10, MustMsg(MsgCmtSleep, Sleep{Fn: fn})))
	require.NoError(t, env.sched.ScheduleIn(30, MustMsg(MsgCmtSleep, Sleep{Fn: fn})))
	require.Equal(t, ErrSchedulerFull, env.sched.ScheduleIn(40, MustMsg(MsgCmtSleep, Sleep{Fn: fn})))
	require.Equal(t, 3, env.sched.Waiting())

	require.True(t, env.sched.Cancel(MsgCmtSleep))
	require.Equal(t, 1, env.sched.Waiting())
}

func TestScheduleEarliestFirst(t *testing.T) {
	env := newSchedTestEnv(t, 4)
	require.NoError(t, env.sched.ScheduleIn(30, MustMsg(MsgBEStatusPulse, TimeMs(0))))
	require.NoError(t, env.sched.ScheduleIn(10, MustMsg(MsgBETest, TimeUs(0))))
	require.NoError(t, env.sched.ScheduleIn(20, MustMsg(MsgDebugChanged, Bool(true))))
	env.clock.AdvanceMs(30)
	require.Equal(t, 3, env.sched.fire())
	require.Equal(t, []MsgID{MsgBETest, MsgDebugChanged, MsgBEStatusPulse}, env.drain())
}

func TestScheduleRetryWhenChannelFull(t *testing.T) {
	clock := NewManualClock()
	out := NewChannel("sched", 1, clock)
	sched := newScheduler(2, clock, out)
	require.NoError(t, out.PostNoWait(MustMsg(MsgBackendNoop, nil)))
	require.NoError(t, sched.ScheduleIn(0, MustMsg(MsgBETest, TimeUs(0))))

	require.Zero(t, sched.fire())
	require.True(t, sched.Exists(MsgBETest))

	out.GetBlocking()
	require.Equal(t, 1, sched.fire())
	require.False(t, sched.Exists(MsgBETest))
	require.Equal(t, MsgBETest, out.GetBlocking().ID)
}

func TestScheduleCancelReleasesString(t *testing.T) {
	env := newSchedTestEnv(t, 2)
	msg := MustMsg(MsgDisplayMessage, NewStr("later"))
	require.NoError(t, env.sched.ScheduleIn(10, msg))
	require.True(t, env.sched.Cancel(MsgDisplayMessage))
	require.True(t, msg.Str().Released())
}
