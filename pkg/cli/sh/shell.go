// Package sh provides an interactive shell driving an in-process gadget.
package sh

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/kevsays/pkg/board"
	"github.com/robotalks/kevsays/pkg/gadget"
	"github.com/robotalks/kevsays/pkg/ui"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Gadget *gadget.Gadget

	cancel func()
	done   chan error
}

const (
	shellKey     = "$shell"
	startTimeout = 5 * time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&StatusCmd,
		&PrintCmd,
		&ScreenCmd,
		&DebugCmd,
		&OptionsCmd,
		&ButtonCmd,
		&TempCmd,
		&LEDCmd,
		&ToneCmd,
		&ScheduleCmd,
		&CancelCmd,
		&SchedCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell on a gadget.
func New(g *gadget.Gadget) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Gadget: g,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", g.Config.DeviceID))
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeSimulated wraps command func requires simulated board IO.
func MustBeSimulated(fn func(c *ishell.Context, io *board.SimIO)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		io, ok := ShellFrom(c).Gadget.IO.(*board.SimIO)
		if !ok {
			c.Err(fmt.Errorf("board is not simulated"))
			return
		}
		fn(c, io)
	}
}

// PowerOn runs the gadget in background and waits for the startup
// handshake.
func (s *Shell) PowerOn() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel, s.done = cancel, make(chan error, 1)
	go func() {
		s.done <- s.Gadget.Run(ctx)
	}()
	deadline := time.After(startTimeout)
	for !s.Gadget.Ready() {
		select {
		case err := <-s.done:
			cancel()
			if err == nil {
				err = fmt.Errorf("gadget stopped during startup")
			}
			return err
		case <-deadline:
			cancel()
			return fmt.Errorf("gadget startup timeout")
		case <-time.After(time.Millisecond):
		}
	}
	return nil
}

// PowerOff stops the gadget.
func (s *Shell) PowerOff() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	s.cancel = nil
	return <-s.done
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if err := s.PowerOn(); err != nil {
		log.Fatalf("power on failed: %v", err)
	}
	defer s.PowerOff()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := gadget.NewConfig()
	disp := ui.NewTextDisplay(conf.DisplayRows, nil)
	New(conf.MustNewGadget(board.NewSimIO(), disp)).Run(flag.Args()...)
}
