package gadget

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/kevsays/pkg/board"
	"github.com/robotalks/kevsays/pkg/cmt"
	"github.com/robotalks/kevsays/pkg/monitor"
	"github.com/robotalks/kevsays/pkg/ui"
)

type gadgetTestEnv struct {
	clock *cmt.ManualClock
	io    *board.SimIO
	disp  *ui.TextDisplay
	g     *Gadget
}

func newGadgetTestEnv(t *testing.T, conf *Config) *gadgetTestEnv {
	env := &gadgetTestEnv{clock: cmt.NewManualClock(), io: board.NewSimIO(), disp: ui.NewTextDisplay(8, nil)}
	g, err := conf.NewGadget(env.io, env.disp, env.clock)
	require.NoError(t, err)
	env.g = g
	return env
}

func testConfig() *Config {
	conf := NewConfig()
	conf.DeviceID = "dev1"
	conf.MQTTURL = ""
	return conf
}

func (e *gadgetTestEnv) run(t *testing.T) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- e.g.Run(ctx)
	}()
	require.Eventually(t, e.g.Ready, time.Second, time.Millisecond)
	return func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("gadget not stopped")
		}
	}
}

func (e *gadgetTestEnv) hasLine(text string) func() bool {
	return func() bool {
		for _, line := range e.disp.Lines() {
			if line == text {
				return true
			}
		}
		return false
	}
}

func TestConfigCopy(t *testing.T) {
	conf := NewConfig()
	conf.ChannelDepth = 1
	require.Equal(t, cmt.DefaultChannelDepth, Default().ChannelDepth)
	require.NotEmpty(t, Default().DeviceID)
}

func TestStartupHandshake(t *testing.T) {
	conf := testConfig()
	conf.Options = uint(board.Option2)
	env := newGadgetTestEnv(t, conf)
	stop := env.run(t)
	defer stop()

	require.Equal(t, board.Option2, env.g.Board.Options())
	require.False(t, env.g.Board.Debug())
	require.NoError(t, env.g.Printf("hello\n"))
	require.Eventually(t, env.hasLine("hello"), time.Second, time.Millisecond)

	env.io.PressButton()
	require.Eventually(t, env.hasLine("debug on"), time.Second, time.Millisecond)

	require.Panics(t, func() { env.g.Run(context.Background()) })
}

func TestDebugAtReset(t *testing.T) {
	conf := testConfig()
	conf.Debug = true
	env := newGadgetTestEnv(t, conf)
	stop := env.run(t)
	defer stop()
	require.True(t, env.g.Board.Debug())
}

func TestMetricsAndStatusStream(t *testing.T) {
	env := newGadgetTestEnv(t, testConfig())
	h, err := env.g.MetricsHandler()
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	stop := env.run(t)
	defer stop()

	conn, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", "", "http://localhost/")
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return env.g.Reporter.Writers() == 1 }, time.Second, time.Millisecond)

	env.clock.AdvanceMs(uint32(env.g.Config.StatusPulseMs))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	pkt, err := monitor.NewWebSocketReadWriter(conn).ReadPacket()
	require.NoError(t, err)
	report, err := monitor.DecodeStatusReport(pkt)
	require.NoError(t, err)
	require.Equal(t, "dev1", report.DeviceId)
	require.Len(t, report.Cores, 2)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "kevsays_status_reports_total 1")
	require.Contains(t, string(body), `kevsays_core_messages_per_second{core="be"}`)
}
