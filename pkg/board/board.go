// Package board provides the board level functions around the two cores:
// LED, tone, option switches, temperature and the debug flag.
package board

import (
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/kevsays/pkg/cmt"
)

// IO is the hardware the board drives.
type IO interface {
	SetLED(on bool)
	SetTone(on bool)
	// ReadOptionSwitches returns the raw switch inputs, bit 0 is option 1.
	// Switches are tied to GND, so a closed switch reads 0.
	ReadOptionSwitches() uint8
	// PushButtonPressed reads the rotary push-button.
	PushButtonPressed() bool
	// TempC reads the on-board temperature sensor.
	TempC() float32
}

// Option switch bits.
const (
	Option1 uint8 = 1 << iota
	Option2
	Option3

	optionsMask = Option1 | Option2 | Option3
)

// Board drives IO. Deferred parts of LED/tone patterns run on the back-end
// core once its loop runs, before that they sleep.
type Board struct {
	io   IO
	sys  *cmt.System
	core *cmt.Core

	lock    sync.RWMutex
	debug   bool
	options uint8
}

// New creates a Board.
func New(sys *cmt.System, io IO) *Board {
	return &Board{io: io, sys: sys, core: sys.BE()}
}

// Init reads the initial board state: holding the push-button at reset
// turns debug on, and the option switches are cached.
func (b *Board) Init() {
	if b.io.PushButtonPressed() {
		b.DebugSet(true)
	}
	b.OptionsRead()
	glog.Infof("board initialized: options=%03b debug=%v", b.Options(), b.Debug())
}

// Debug returns the debug flag.
func (b *Board) Debug() bool {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.debug
}

// DebugSet sets the debug flag and returns whether it changed. When the
// message loops run, a change is announced to both cores.
func (b *Board) DebugSet(on bool) bool {
	b.lock.Lock()
	changed := b.debug != on
	b.debug = on
	b.lock.Unlock()
	if changed && b.sys.LoopsRunning() {
		if err := b.sys.PostBothNoWait(cmt.MustMsg(cmt.MsgDebugChanged, cmt.Bool(on))); err != nil {
			glog.Warningf("debug change not posted: %v", err)
		}
	}
	return changed
}

// OptionsRead re-reads the option switches, returning the value and
// whether it differs from the cached one.
func (b *Board) OptionsRead() (uint8, bool) {
	val := ^b.io.ReadOptionSwitches() & optionsMask
	b.lock.Lock()
	changed := b.options != val
	b.options = val
	b.lock.Unlock()
	return val, changed
}

// Options returns the cached option switch value.
func (b *Board) Options() uint8 {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.options
}

// OptionValue reports whether an option is on.
func (b *Board) OptionValue(opt uint8) bool {
	return b.Options()&opt != 0
}

// TempC returns the on-board temperature in Celsius.
func (b *Board) TempC() float32 {
	return b.io.TempC()
}

// TempF returns the on-board temperature in Fahrenheit.
func (b *Board) TempF() float32 {
	return b.TempC()*9/5 + 32
}

// LEDOn turns the LED on/off.
func (b *Board) LEDOn(on bool) {
	b.io.SetLED(on)
}

// ButtonIRQ is the push-button interrupt handler: it toggles debug. Like
// any interrupt handler it must never block, so it only posts nowait.
func (b *Board) ButtonIRQ() {
	on := !b.Debug()
	if b.DebugSet(on) {
		glog.V(1).Infof("push-button: debug=%v", on)
	}
}

// ToneOn turns the tone on/off.
func (b *Board) ToneOn(on bool) {
	b.io.SetTone(on)
}

// LEDFlash turns the LED on for ms milliseconds.
func (b *Board) LEDFlash(ms int32) {
	b.pulse(b.io.SetLED, ms)
}

// ToneSoundPattern sounds the tone for ms milliseconds.
func (b *Board) ToneSoundPattern(ms int32) {
	b.pulse(b.io.SetTone, ms)
}

// LEDOnOff flashes the LED following pattern, pairs of on and off
// milliseconds. A zero ends the pattern.
func (b *Board) LEDOnOff(pattern []int32) {
	b.onOff(b.io.SetLED, pattern)
}

// ToneOnOff sounds the tone following pattern, see LEDOnOff.
func (b *Board) ToneOnOff(pattern []int32) {
	b.onOff(b.io.SetTone, pattern)
}

func (b *Board) pulse(set func(bool), ms int32) {
	set(true)
	b.sleep(ms, func(interface{}) { set(false) })
}

func (b *Board) onOff(set func(bool), pattern []int32) {
	for len(pattern) > 0 && pattern[0] != 0 {
		on := pattern[0]
		var off int32
		if len(pattern) > 1 {
			off = pattern[1]
		}
		b.pulse(set, on)
		if off == 0 {
			return
		}
		rest := pattern[2:]
		if b.core.Running() {
			b.sleep(on+off, func(interface{}) { b.onOff(set, rest) })
			return
		}
		b.core.System().Clock().SleepMs(off)
		pattern = rest
	}
}

func (b *Board) sleep(ms int32, fn cmt.SleepFunc) {
	if err := b.core.SleepMs(ms, fn, nil); err != nil {
		glog.Errorf("board: deferred call in %dms failed: %v", ms, err)
		fn(nil)
	}
}
