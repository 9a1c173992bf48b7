package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/kevsays/pkg/board"
	"github.com/robotalks/kevsays/pkg/cmt"
)

func TestTextDisplay(t *testing.T) {
	var out bytes.Buffer
	d := NewTextDisplay(3, &out)
	d.Prints("one")
	d.Prints(" line\ntwo\n")
	require.Equal(t, []string{"", "one line", "two"}, d.Lines())
	d.Prints("three\nfour\n")
	require.Equal(t, []string{"two", "three", "four"}, d.Lines())
	require.Equal(t, "one line\ntwo\nthree\nfour\n", out.String())

	d.Clear()
	d.ScrollArea(1, 0)
	d.Prints("a\nb\nc\n")
	require.Equal(t, []string{"b", "c"}, d.Lines())
	d.ScrollArea(2, 2)
	require.Len(t, d.Lines(), 3)

	d.SetTextColors(ColorYellow, ColorBlack)
	fg, bg := d.Colors()
	require.Equal(t, ColorYellow, fg)
	require.Equal(t, ColorBlack, bg)
}

type uiTestEnv struct {
	clock *cmt.ManualClock
	sys   *cmt.System
	io    *board.SimIO
	disp  *TextDisplay
	ui    *UI
}

func newUITestEnv(debug bool) *uiTestEnv {
	env := &uiTestEnv{clock: cmt.NewManualClock(), io: board.NewSimIO(), disp: NewTextDisplay(8, nil)}
	env.sys = cmt.NewSystem(cmt.Options{ChannelDepth: 4, Clock: env.clock})
	env.io.SetButton(debug)
	b := board.New(env.sys, env.io)
	b.Init()
	env.ui = New(env.sys, b, env.disp)
	return env
}

func (e *uiTestEnv) run(t *testing.T) func() {
	ctx, cancel := context.WithCancel(cmt.WithCore(context.Background(), cmt.FrontEnd))
	done := make(chan error, 1)
	go func() {
		done <- e.ui.Run(ctx)
	}()
	require.Eventually(t, e.sys.UI().Running, time.Second, time.Millisecond)
	return func() {
		cancel()
		select {
		case err := <-done:
			require.Equal(t, context.Canceled, err)
		case <-time.After(time.Second):
			t.Fatal("ui loop not stopped")
		}
	}
}

func (e *uiTestEnv) hasLine(prefix string) func() bool {
	return func() bool {
		for _, line := range e.disp.Lines() {
			if strings.HasPrefix(line, prefix) {
				return true
			}
		}
		return false
	}
}

func TestModuleInitAnnouncesToBackEnd(t *testing.T) {
	env := newUITestEnv(false)
	stop := env.run(t)
	defer stop()

	msg, ok := env.sys.BE().Chan().GetNoWait()
	require.True(t, ok)
	require.Equal(t, cmt.MsgUIInitialized, msg.ID)
	fg, _ := env.disp.Colors()
	require.Equal(t, ColorGreen, fg)
}

func TestDisplayMessageReleasesString(t *testing.T) {
	env := newUITestEnv(false)
	stop := env.run(t)
	defer stop()

	s := cmt.NewStr("hello\n")
	env.sys.PostUI(cmt.Msg{ID: cmt.MsgDisplayMessage, Data: s})
	require.Eventually(t, s.Released, time.Second, time.Millisecond)
	require.Eventually(t, env.hasLine("hello"), time.Second, time.Millisecond)

	require.NoError(t, Printf(env.sys, "%d apples\n", 3))
	require.Eventually(t, env.hasLine("3 apples"), time.Second, time.Millisecond)
}

func TestPrintfChannelFull(t *testing.T) {
	env := newUITestEnv(false)
	for i := 0; i < env.sys.UI().Chan().Cap(); i++ {
		require.NoError(t, Printf(env.sys, "line %d\n", i))
	}
	err := Printf(env.sys, "overflow\n")
	require.True(t, errors.Is(err, cmt.ErrChannelFull))
}

func TestBEInitializedStartsStatusPulse(t *testing.T) {
	env := newUITestEnv(true)
	stop := env.run(t)
	defer stop()

	require.False(t, env.ui.BEReady())
	env.sys.PostUI(cmt.MustMsg(cmt.MsgBEInitialized, nil))
	require.Eventually(t, env.ui.BEReady, time.Second, time.Millisecond)
	require.True(t, env.sys.UI().Scheduler().Exists(cmt.MsgUIStatusPulse))

	env.clock.AdvanceMs(DefaultStatusPulseMs)
	require.Eventually(t, env.hasLine("UI: "), time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		return env.sys.UI().Scheduler().Exists(cmt.MsgUIStatusPulse)
	}, time.Second, time.Millisecond)
}

func TestDebugAndConfigChanged(t *testing.T) {
	env := newUITestEnv(false)
	stop := env.run(t)
	defer stop()

	env.sys.PostUI(cmt.MustMsg(cmt.MsgDebugChanged, cmt.Bool(true)))
	env.sys.PostUI(cmt.MustMsg(cmt.MsgConfigChanged, cmt.Status(board.Option1|board.Option3)))
	require.Eventually(t, env.hasLine("debug on"), time.Second, time.Millisecond)
	require.Eventually(t, env.hasLine("options 101"), time.Second, time.Millisecond)
}
