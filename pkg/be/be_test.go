package be

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/kevsays/pkg/board"
	"github.com/robotalks/kevsays/pkg/cmt"
	"github.com/robotalks/kevsays/pkg/monitor"
)

type beTestEnv struct {
	clock *cmt.ManualClock
	sys   *cmt.System
	io    *board.SimIO
	board *board.Board
	be    *BE
}

func newBETestEnv(debug bool) *beTestEnv {
	env := &beTestEnv{clock: cmt.NewManualClock(), io: board.NewSimIO()}
	env.sys = cmt.NewSystem(cmt.Options{Clock: env.clock})
	env.io.SetButton(debug)
	env.board = board.New(env.sys, env.io)
	env.board.Init()
	env.be = New(env.sys, env.board)
	return env
}

func (e *beTestEnv) run(t *testing.T) func() {
	ctx, cancel := context.WithCancel(cmt.WithCore(context.Background(), cmt.BackEnd))
	done := make(chan error, 1)
	go func() {
		done <- e.be.Run(ctx)
	}()
	require.Eventually(t, e.sys.BE().Running, time.Second, time.Millisecond)
	return func() {
		cancel()
		select {
		case err := <-done:
			require.Equal(t, context.Canceled, err)
		case <-time.After(time.Second):
			t.Fatal("back-end loop not stopped")
		}
	}
}

func (e *beTestEnv) uiMsgs() []cmt.Msg {
	var msgs []cmt.Msg
	for {
		msg, ok := e.sys.UI().Chan().GetNoWait()
		if !ok {
			return msgs
		}
		msgs = append(msgs, msg)
	}
}

func (e *beTestEnv) scheduled(id cmt.MsgID) func() bool {
	return func() bool {
		return e.sys.BE().Scheduler().Exists(id)
	}
}

func TestModuleInitHandshake(t *testing.T) {
	env := newBETestEnv(false)
	stop := env.run(t)
	defer stop()

	msgs := env.uiMsgs()
	require.Len(t, msgs, 1)
	require.Equal(t, cmt.MsgBEInitialized, msgs[0].ID)
	require.Eventually(t, env.scheduled(cmt.MsgBETest), time.Second, time.Millisecond)
	require.False(t, env.sys.BE().Scheduler().Exists(cmt.MsgBEStatusPulse))

	require.False(t, env.be.UIReady())
	env.sys.PostBE(cmt.MustMsg(cmt.MsgUIInitialized, nil))
	require.Eventually(t, env.be.UIReady, time.Second, time.Millisecond)
}

func TestSelfTestTimerStats(t *testing.T) {
	env := newBETestEnv(true)
	stop := env.run(t)
	defer stop()

	require.Eventually(t, env.scheduled(cmt.MsgBETest), time.Second, time.Millisecond)
	_, ok := env.be.TimerStats()
	require.False(t, ok)

	env.clock.AdvanceMs(TestPeriodMs + 5)
	require.Eventually(t, func() bool {
		st, ok := env.be.TimerStats()
		return ok && st.Times == 1
	}, time.Second, time.Millisecond)
	st, _ := env.be.TimerStats()
	require.InDelta(t, 5000.0/TestPeriodMs, st.ErrorUsPerMs, 1e-9)
	require.InDelta(t, 5000.0/60, st.AvgDriftUsPerSec, 1e-9)

	require.Eventually(t, env.scheduled(cmt.MsgBETest), time.Second, time.Millisecond)
	env.clock.AdvanceMs(TestPeriodMs)
	require.Eventually(t, func() bool {
		st, ok := env.be.TimerStats()
		return ok && st.Times == 2
	}, time.Second, time.Millisecond)
	st, _ = env.be.TimerStats()
	require.InDelta(t, 0, st.ErrorUsPerMs, 1e-9)
	require.InDelta(t, 5000.0/120, st.AvgDriftUsPerSec, 1e-9)
}

func TestOptionsChangePostsConfigChanged(t *testing.T) {
	env := newBETestEnv(false)
	stop := env.run(t)
	defer stop()

	require.Equal(t, cmt.MsgBEInitialized, env.uiMsgs()[0].ID)
	env.io.SetOptions(board.Option2)
	require.Eventually(t, func() bool {
		return env.sys.UI().Chan().Len() > 0
	}, time.Second, time.Millisecond)
	msgs := env.uiMsgs()
	require.Len(t, msgs, 1)
	require.Equal(t, cmt.MsgConfigChanged, msgs[0].ID)
	require.Equal(t, cmt.Status(board.Option2), msgs[0].Data)
	require.Equal(t, board.Option2, env.board.Options())
}

func TestStatusPulsePublishes(t *testing.T) {
	env := newBETestEnv(true)
	reports := make(chan *monitor.Status, 4)
	env.be.DeviceID = "dev1"
	env.be.Publisher = monitor.PublishFunc(func(st *monitor.Status) error {
		reports <- st
		return nil
	})
	stop := env.run(t)
	defer stop()

	require.Eventually(t, env.scheduled(cmt.MsgBEStatusPulse), time.Second, time.Millisecond)
	env.clock.AdvanceMs(DefaultStatusPulseMs)
	select {
	case st := <-reports:
		require.Equal(t, "dev1", st.DeviceID)
		require.Equal(t, uint32(DefaultStatusPulseMs), st.TimeMs)
		require.Len(t, st.Cores, 2)
		require.Equal(t, cmt.BackEnd, st.Cores[0].Core)
		require.Equal(t, cmt.FrontEnd, st.Cores[1].Core)
		require.True(t, st.Debug)
	case <-time.After(time.Second):
		t.Fatal("status not published")
	}
	require.Eventually(t, env.scheduled(cmt.MsgBEStatusPulse), time.Second, time.Millisecond)
}

type blockedWriter struct {
	started chan struct{}
	release chan struct{}
}

func (w *blockedWriter) WritePacket([]byte) error {
	select {
	case w.started <- struct{}{}:
	default:
	}
	<-w.release
	return nil
}

func TestStalledStatusWriterKeepsLoopRunning(t *testing.T) {
	env := newBETestEnv(false)
	w := &blockedWriter{started: make(chan struct{}, 1), release: make(chan struct{})}
	defer close(w.release)
	env.be.StatusPulseMs = 100
	env.be.Publisher = monitor.NewReporter("dev1", w)
	stop := env.run(t)
	defer stop()

	require.Eventually(t, env.scheduled(cmt.MsgBEStatusPulse), time.Second, time.Millisecond)
	env.clock.AdvanceMs(100)
	select {
	case <-w.started:
	case <-time.After(time.Second):
		t.Fatal("status not published")
	}

	for i := 0; i < 64; i++ {
		require.Eventually(t, func() bool {
			return env.sys.PostBENoWait(cmt.MustMsg(cmt.MsgDebugChanged, cmt.Bool(i%2 == 0))) == nil
		}, time.Second, time.Millisecond)
	}
	require.Eventually(t, func() bool { return env.sys.BE().Chan().Len() == 0 }, time.Second, time.Millisecond)
	require.Eventually(t, env.scheduled(cmt.MsgBEStatusPulse), time.Second, time.Millisecond)
}
