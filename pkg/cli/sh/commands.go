package sh

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/kevsays/pkg/board"
	"github.com/robotalks/kevsays/pkg/cmt"
	"github.com/robotalks/kevsays/pkg/ui"
)

func parsePattern(args []string) ([]int32, error) {
	pattern := make([]int32, 0, len(args))
	for _, arg := range args {
		val, err := strconv.ParseInt(arg, 10, 32)
		if err != nil || val < 0 {
			return nil, fmt.Errorf("Invalid duration %q", arg)
		}
		pattern = append(pattern, int32(val))
	}
	return pattern, nil
}

var (
	// StatusCmd shows the gadget status.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			st := s.Gadget.BE.Status()
			if s.OutputJSON {
				out, err := json.Marshal(st)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			c.Printf("device %s, options %03b, debug %v, scheduled %d\n",
				st.DeviceID, st.Options, st.Debug, st.SchedWaiting)
			for _, ps := range st.Cores {
				c.Println(ps.String())
			}
		},
	}

	// PrintCmd shows text on the display.
	PrintCmd = ishell.Cmd{
		Name:    "print",
		Aliases: []string{"p"},
		Help:    "TEXT...",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Gadget.Printf("%s\n", strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
			}
		},
	}

	// ScreenCmd dumps the display.
	ScreenCmd = ishell.Cmd{
		Name: "screen",
		Help: "",
		Func: func(c *ishell.Context) {
			disp, ok := ShellFrom(c).Gadget.UI.Display().(*ui.TextDisplay)
			if !ok {
				c.Err(fmt.Errorf("display can't be read"))
				return
			}
			for _, line := range disp.Lines() {
				c.Println("|" + line)
			}
		},
	}

	// DebugCmd shows or sets the debug flag.
	DebugCmd = ishell.Cmd{
		Name: "debug",
		Help: "[on|off]",
		Func: func(c *ishell.Context) {
			b := ShellFrom(c).Gadget.Board
			if len(c.Args) > 0 {
				switch c.Args[0] {
				case "on":
					b.DebugSet(true)
				case "off":
					b.DebugSet(false)
				default:
					c.Err(fmt.Errorf("on or off expected"))
					return
				}
			}
			c.Printf("debug %v\n", b.Debug())
		},
	}

	// OptionsCmd sets the simulated option switches.
	OptionsCmd = ishell.Cmd{
		Name:    "options",
		Aliases: []string{"opt"},
		Help:    "VALUE(0-7)",
		Func: MustBeSimulated(func(c *ishell.Context, io *board.SimIO) {
			if len(c.Args) < 1 {
				c.Printf("options %03b\n", ShellFrom(c).Gadget.Board.Options())
				return
			}
			val, err := strconv.ParseUint(c.Args[0], 0, 8)
			if err != nil || val > 7 {
				c.Err(fmt.Errorf("Invalid VALUE %q", c.Args[0]))
				return
			}
			io.SetOptions(uint8(val))
		}),
	}

	// ButtonCmd presses the push-button.
	ButtonCmd = ishell.Cmd{
		Name:    "button",
		Aliases: []string{"b"},
		Help:    "",
		Func: MustBeSimulated(func(c *ishell.Context, io *board.SimIO) {
			io.PressButton()
		}),
	}

	// TempCmd shows or sets the simulated temperature.
	TempCmd = ishell.Cmd{
		Name: "temp",
		Help: "[CELSIUS]",
		Func: MustBeSimulated(func(c *ishell.Context, io *board.SimIO) {
			b := ShellFrom(c).Gadget.Board
			if len(c.Args) > 0 {
				val, err := strconv.ParseFloat(c.Args[0], 32)
				if err != nil {
					c.Err(fmt.Errorf("Invalid CELSIUS: %v", err))
					return
				}
				io.SetTempC(float32(val))
			}
			c.Printf("%.1fC %.1fF\n", b.TempC(), b.TempF())
		}),
	}

	// LEDCmd flashes the LED following a pattern.
	LEDCmd = ishell.Cmd{
		Name: "led",
		Help: "ON(ms) [OFF(ms) ON(ms)...]",
		Func: func(c *ishell.Context) {
			pattern, err := parsePattern(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			ShellFrom(c).Gadget.Board.LEDOnOff(pattern)
		},
	}

	// ToneCmd sounds the tone following a pattern.
	ToneCmd = ishell.Cmd{
		Name: "tone",
		Help: "ON(ms) [OFF(ms) ON(ms)...]",
		Func: func(c *ishell.Context) {
			pattern, err := parsePattern(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			ShellFrom(c).Gadget.Board.ToneOnOff(pattern)
		},
	}

	// ScheduleCmd schedules a display message.
	ScheduleCmd = ishell.Cmd{
		Name:    "schedule",
		Aliases: []string{"at"},
		Help:    "DELAY(ms) TEXT...",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("DELAY and TEXT required"))
				return
			}
			ms, err := strconv.ParseInt(c.Args[0], 10, 32)
			if err != nil {
				c.Err(fmt.Errorf("Invalid DELAY: %v", err))
				return
			}
			str := cmt.NewStr(strings.Join(c.Args[1:], " ") + "\n")
			msg := cmt.Msg{ID: cmt.MsgDisplayMessage, Data: str}
			if err := ShellFrom(c).Gadget.System.UI().ScheduleMsgIn(int32(ms), msg); err != nil {
				str.Release()
				c.Err(err)
			}
		},
	}

	// CancelCmd cancels the scheduled display message.
	CancelCmd = ishell.Cmd{
		Name: "cancel",
		Help: "",
		Func: func(c *ishell.Context) {
			if !ShellFrom(c).Gadget.System.UI().Scheduler().Cancel(cmt.MsgDisplayMessage) {
				c.Println("nothing scheduled")
			}
		},
	}

	// SchedCmd shows scheduled messages.
	SchedCmd = ishell.Cmd{
		Name: "sched",
		Help: "",
		Func: func(c *ishell.Context) {
			sys := ShellFrom(c).Gadget.System
			for _, id := range []cmt.CoreID{cmt.BackEnd, cmt.FrontEnd} {
				c.Printf("%s: %d waiting\n", id, sys.Core(id).Scheduler().Waiting())
			}
		},
	}
)
