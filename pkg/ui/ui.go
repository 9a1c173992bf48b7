// Package ui is the front-end module running on the UI core.
package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/kevsays/pkg/board"
	"github.com/robotalks/kevsays/pkg/cmt"
)

// DefaultStatusPulseMs is the period of the UI status pulse.
const DefaultStatusPulseMs = 7001

// UI is the front-end module.
type UI struct {
	// StatusPulseMs is the period of the status line shown in debug mode.
	StatusPulseMs int32

	sys   *cmt.System
	core  *cmt.Core
	board *board.Board
	disp  Display

	beReady int32

	// owned by the UI loop
	debug   bool
	options uint8
}

// New creates the UI module.
func New(sys *cmt.System, b *board.Board, disp Display) *UI {
	return &UI{
		StatusPulseMs: DefaultStatusPulseMs,
		sys:           sys,
		core:          sys.UI(),
		board:         b,
		disp:          disp,
	}
}

// Display returns the display.
func (u *UI) Display() Display {
	return u.disp
}

// BEReady reports whether the back-end announced it is initialized.
func (u *UI) BEReady() bool {
	return atomic.LoadInt32(&u.beReady) != 0
}

// LoopContext returns the handlers and idle functions of the UI loop.
func (u *UI) LoopContext() *cmt.LoopContext {
	return &cmt.LoopContext{
		Handlers: cmt.HandlerTable{
			{ID: cmt.MsgDisplayMessage, Handler: cmt.HandleMsgFunc(u.handleDisplayMessage)},
			{ID: cmt.MsgBEInitialized, Handler: cmt.HandleMsgFunc(u.handleBEInitialized)},
			cmt.SleepHandlerEntry,
			{ID: cmt.MsgUIStatusPulse, Handler: cmt.HandleMsgFunc(u.handleStatusPulse)},
			{ID: cmt.MsgDebugChanged, Handler: cmt.HandleMsgFunc(u.handleDebugChanged)},
			{ID: cmt.MsgConfigChanged, Handler: cmt.HandleMsgFunc(u.handleConfigChanged)},
		},
		IdleFuncs: []cmt.IdleFunc{u.idle},
	}
}

// ModuleInit builds the display and tells the back-end the UI is
// initialized. It must run on the UI core before its loop starts.
func (u *UI) ModuleInit() {
	u.debug, u.options = u.board.Debug(), u.board.Options()
	u.disp.SetTextColors(ColorGreen, ColorBlack)
	u.disp.Clear()
	u.disp.ScrollArea(0, 0)
	u.sys.PostBE(cmt.MustMsg(cmt.MsgUIInitialized, nil))
	glog.Info("ui: initialized")
}

// Run initializes the module and runs the UI message loop. ctx must be
// tagged as the UI core.
func (u *UI) Run(ctx context.Context) error {
	u.ModuleInit()
	return u.core.MessageLoop(ctx, u.LoopContext())
}

// Printf shows text on the display from any core. It never blocks, so it
// is safe from interrupt handlers too.
func Printf(sys *cmt.System, format string, args ...interface{}) error {
	s := cmt.NewStr(fmt.Sprintf(format, args...))
	if err := sys.PostUINoWait(cmt.Msg{ID: cmt.MsgDisplayMessage, Data: s}); err != nil {
		s.Release()
		return err
	}
	return nil
}

func (u *UI) idle(*cmt.Core) {
	glog.V(4).Info("ui: idle")
}

func (u *UI) handleDisplayMessage(_ *cmt.Core, msg *cmt.Msg) {
	s := msg.Str()
	if s == nil {
		return
	}
	u.disp.Prints(s.String())
	if err := s.Release(); err != nil {
		glog.Warningf("ui: display message: %v", err)
	}
}

func (u *UI) handleBEInitialized(c *cmt.Core, _ *cmt.Msg) {
	glog.Info("ui: back-end initialized")
	if u.StatusPulseMs > 0 {
		u.scheduleStatusPulse(c)
	}
	atomic.StoreInt32(&u.beReady, 1)
}

func (u *UI) scheduleStatusPulse(c *cmt.Core) {
	msg := cmt.MustMsg(cmt.MsgUIStatusPulse, cmt.TimeMs(c.System().Clock().NowMs()))
	if err := c.ScheduleMsgIn(u.StatusPulseMs, msg); err != nil {
		glog.Warningf("ui: status pulse not scheduled: %v", err)
	}
}

func (u *UI) handleStatusPulse(c *cmt.Core, _ *cmt.Msg) {
	if u.debug {
		ps := c.ProcStatus()
		u.disp.Prints(fmt.Sprintf("UI: %.1f msg/s %.0f idle/s\n", ps.RetrievedPerSec(), ps.IdlePassesPerSec()))
	}
	u.scheduleStatusPulse(c)
}

func (u *UI) handleDebugChanged(_ *cmt.Core, msg *cmt.Msg) {
	on, _ := msg.Data.(cmt.Bool)
	u.debug = bool(on)
	u.disp.Prints(fmt.Sprintf("debug %s\n", onOff(u.debug)))
}

func (u *UI) handleConfigChanged(_ *cmt.Core, msg *cmt.Msg) {
	val, _ := msg.Data.(cmt.Status)
	u.options = uint8(val)
	u.disp.Prints(fmt.Sprintf("options %03b\n", u.options))
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
