// Package gadget assembles the two cores, the board and the modules
// running on them, and starts them.
package gadget

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/kevsays/pkg/be"
	"github.com/robotalks/kevsays/pkg/board"
	"github.com/robotalks/kevsays/pkg/cmt"
	"github.com/robotalks/kevsays/pkg/framework"
	"github.com/robotalks/kevsays/pkg/monitor"
	"github.com/robotalks/kevsays/pkg/ui"
)

// Gadget is the whole device.
type Gadget struct {
	Config    *Config
	System    *cmt.System
	IO        board.IO
	Board     *board.Board
	BE        *be.BE
	UI        *ui.UI
	Reporter  *monitor.Reporter
	Collector *monitor.Collector
	// Queue is nil when MQTT is not configured.
	Queue *monitor.Queue

	started int32
}

// NewGadget creates a Gadget on io and disp. clock defaults to the system
// clock. A board.SimIO is set up from the config.
func (c *Config) NewGadget(io board.IO, disp ui.Display, clock cmt.Clock) (*Gadget, error) {
	if clock == nil {
		clock = cmt.NewSystemClock()
	}
	g := &Gadget{
		Config:    c,
		System:    cmt.NewSystem(c.SystemOptions(clock, io)),
		IO:        io,
		Reporter:  monitor.NewReporter(c.DeviceID),
		Collector: monitor.NewCollector(),
	}
	g.Board = board.New(g.System, io)
	if sim, ok := io.(*board.SimIO); ok {
		sim.Now = clock.NowMs
		sim.ButtonIRQ = g.Board.ButtonIRQ
		sim.SetOptions(uint8(c.Options))
		sim.SetButton(c.Debug)
	}

	if c.MQTTURL != "" {
		q, err := monitor.NewQueueFromURL(c.MQTTURL)
		if err != nil {
			return nil, fmt.Errorf("create MQTT queue error: %w", err)
		}
		g.Queue = q
		g.Reporter.Attach(&monitor.TopicWriter{Queue: q, Topic: monitor.StatusTopic(c.DeviceID)})
	}

	g.BE = be.New(g.System, g.Board)
	g.BE.DeviceID = c.DeviceID
	g.BE.StatusPulseMs = int32(c.StatusPulseMs)
	g.BE.Publisher = monitor.Publishers{g.Reporter, g.Collector}
	g.UI = ui.New(g.System, g.Board, disp)
	g.UI.StatusPulseMs = int32(c.UIStatusPulseMs)
	return g, nil
}

// Printf shows text on the display.
func (g *Gadget) Printf(format string, args ...interface{}) error {
	return ui.Printf(g.System, format, args...)
}

// MetricsHandler serves /metrics from the collector and /ws with live
// status reports.
func (g *Gadget) MetricsHandler() (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(g.Collector); err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/ws", monitor.WebSocketHandler(g.Reporter))
	return mux, nil
}

// Run starts the gadget and runs until ctx is done: the board is
// initialized, the UI core is launched, then the back-end runs. Each module
// announces itself to its peer before entering its loop.
func (g *Gadget) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&g.started, 0, 1) {
		panic(&cmt.InvariantError{Core: cmt.BackEnd, Reason: "gadget already started"})
	}
	g.Board.Init()
	if g.Config.Debug {
		g.Board.DebugSet(true)
	}
	if g.Queue != nil {
		if err := g.Queue.Connect(monitor.DefaultConnectTimeout); err != nil {
			return fmt.Errorf("connect MQTT %s error: %w", g.Config.MQTTURL, err)
		}
		defer g.Queue.Close()
	}
	glog.Infof("gadget %s starting", g.Config.DeviceID)
	return framework.NewRunnerWith(ctx).Go(
		framework.NamedRun("ui", framework.RunFunc(func(ctx context.Context) error {
			return g.UI.Run(cmt.WithCore(ctx, cmt.FrontEnd))
		})),
		framework.NamedRun("be", framework.RunFunc(func(ctx context.Context) error {
			return g.BE.Run(cmt.WithCore(ctx, cmt.BackEnd))
		})),
	).Wait()
}

// Ready reports whether both modules completed the startup handshake.
func (g *Gadget) Ready() bool {
	return g.System.LoopsRunning() && g.BE.UIReady() && g.UI.BEReady()
}
