// Package be is the back-end module running on the back-end core.
package be

import (
	"context"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/kevsays/pkg/board"
	"github.com/robotalks/kevsays/pkg/cmt"
	"github.com/robotalks/kevsays/pkg/monitor"
)

// Default periods.
const (
	DefaultStatusPulseMs = 6999
	TestPeriodMs         = 60000
)

// TimerStats is the scheduled message timing error measured by the
// BE_TEST self-test.
type TimerStats struct {
	Times int
	// ErrorUsPerMs is the error of the last period per scheduled ms.
	ErrorUsPerMs float64
	// AvgDriftUsPerSec is the accumulated drift since the first run.
	AvgDriftUsPerSec float64
}

// BE is the back-end module.
type BE struct {
	// StatusPulseMs is the status report period, 0 disables.
	StatusPulseMs int32
	// Publisher receives the status reports, optional.
	Publisher monitor.Publisher
	DeviceID  string

	sys   *cmt.System
	core  *cmt.Core
	board *board.Board

	uiReady int32
	stats   atomic.Value

	// owned by the back-end loop
	testRuns    int
	testFirstUs uint64
}

// New creates the back-end module.
func New(sys *cmt.System, b *board.Board) *BE {
	return &BE{
		StatusPulseMs: DefaultStatusPulseMs,
		sys:           sys,
		core:          sys.BE(),
		board:         b,
	}
}

// UIReady reports whether the UI announced it is initialized.
func (m *BE) UIReady() bool {
	return atomic.LoadInt32(&m.uiReady) != 0
}

// TimerStats returns the last self-test measurement, recorded only while
// debug is on.
func (m *BE) TimerStats() (TimerStats, bool) {
	st, ok := m.stats.Load().(TimerStats)
	return st, ok
}

// LoopContext returns the handlers and idle functions of the back-end loop.
// Handlers are ordered by expected frequency.
func (m *BE) LoopContext() *cmt.LoopContext {
	return &cmt.LoopContext{
		Handlers: cmt.HandlerTable{
			cmt.SleepHandlerEntry,
			{ID: cmt.MsgUIInitialized, Handler: cmt.HandleMsgFunc(m.handleUIInitialized)},
			{ID: cmt.MsgBETest, Handler: cmt.HandleMsgFunc(m.handleTest)},
			{ID: cmt.MsgBEStatusPulse, Handler: cmt.HandleMsgFunc(m.handleStatusPulse)},
			{ID: cmt.MsgDebugChanged, Handler: cmt.HandleMsgFunc(m.handleDebugChanged)},
			{ID: cmt.MsgConfigChanged, Handler: cmt.HandleMsgFunc(m.handleConfigChanged)},
		},
		IdleFuncs: []cmt.IdleFunc{m.idleOptionsRead},
	}
}

// ModuleInit tells the UI the back-end is initialized and kicks off the
// self-test and the status pulse. It must run on the back-end core before
// its loop starts.
func (m *BE) ModuleInit() {
	m.sys.PostUI(cmt.MustMsg(cmt.MsgBEInitialized, nil))
	if err := m.core.PostNoWait(cmt.MustMsg(cmt.MsgBETest, cmt.TimeUs(0))); err != nil {
		glog.Warningf("be: self-test not started: %v", err)
	}
	if m.Publisher != nil && m.StatusPulseMs > 0 {
		m.scheduleStatusPulse()
	}
	glog.Info("be: initialized")
}

// Run initializes the module and runs the back-end message loop. ctx must
// be tagged as the back-end core.
func (m *BE) Run(ctx context.Context) error {
	m.ModuleInit()
	return m.core.MessageLoop(ctx, m.LoopContext())
}

func (m *BE) idleOptionsRead(*cmt.Core) {
	val, changed := m.board.OptionsRead()
	if !changed {
		return
	}
	glog.V(1).Infof("be: options changed to %03b", val)
	if err := m.sys.PostBothNoWait(cmt.MustMsg(cmt.MsgConfigChanged, cmt.Status(val))); err != nil {
		glog.Warningf("be: config change not posted: %v", err)
	}
}

func (m *BE) handleUIInitialized(*cmt.Core, *cmt.Msg) {
	atomic.StoreInt32(&m.uiReady, 1)
	glog.Info("be: ui initialized")
}

func (m *BE) handleTest(c *cmt.Core, msg *cmt.Msg) {
	const periodUs = uint64(TestPeriodMs) * 1000
	now := c.System().Clock().NowUs()
	if m.testRuns == 0 {
		m.testFirstUs = now
	} else if m.board.Debug() {
		last, _ := msg.Data.(cmt.TimeUs)
		errUs := int64(now-uint64(last)) - int64(periodUs)
		totalUs := int64(now - (m.testFirstUs + uint64(m.testRuns)*periodUs))
		st := TimerStats{
			Times:            m.testRuns,
			ErrorUsPerMs:     float64(errUs) / TestPeriodMs,
			AvgDriftUsPerSec: float64(totalUs) / float64(m.testRuns*TestPeriodMs/1000),
		}
		m.stats.Store(st)
		glog.Infof("be: %5d - Error us/ms:%5.2f  Avg:%5.0f", st.Times, st.ErrorUsPerMs, st.AvgDriftUsPerSec)
	}
	m.testRuns++
	if err := c.ScheduleMsgIn(TestPeriodMs, cmt.MustMsg(cmt.MsgBETest, cmt.TimeUs(now))); err != nil {
		glog.Warningf("be: self-test not rescheduled: %v", err)
	}
}

func (m *BE) scheduleStatusPulse() {
	msg := cmt.MustMsg(cmt.MsgBEStatusPulse, cmt.TimeMs(m.sys.Clock().NowMs()))
	if err := m.core.ScheduleMsgIn(m.StatusPulseMs, msg); err != nil {
		glog.Warningf("be: status pulse not scheduled: %v", err)
	}
}

// Status samples the gadget status.
func (m *BE) Status() *monitor.Status {
	return &monitor.Status{
		DeviceID:     m.DeviceID,
		TimeMs:       m.sys.Clock().NowMs(),
		Cores:        []cmt.ProcStatus{m.sys.ProcStatus(cmt.BackEnd), m.sys.ProcStatus(cmt.FrontEnd)},
		Options:      m.board.Options(),
		Debug:        m.board.Debug(),
		SchedWaiting: m.sys.SchedWaiting(),
	}
}

func (m *BE) handleStatusPulse(*cmt.Core, *cmt.Msg) {
	if m.Publisher != nil {
		if err := m.Publisher.Publish(m.Status()); err != nil {
			glog.Errorf("be: status publish: %v", err)
		}
	}
	m.scheduleStatusPulse()
}

func (m *BE) handleDebugChanged(_ *cmt.Core, msg *cmt.Msg) {
	on, _ := msg.Data.(cmt.Bool)
	glog.Infof("be: debug %v", bool(on))
}

func (m *BE) handleConfigChanged(_ *cmt.Core, msg *cmt.Msg) {
	val, _ := msg.Data.(cmt.Status)
	glog.V(1).Infof("be: config %03b", uint8(val))
}
