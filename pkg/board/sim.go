package board

import (
	"sync"
	"time"
)

// Transition is a recorded LED or tone change.
type Transition struct {
	Ms uint32
	On bool
}

// SimIO simulates the board hardware.
type SimIO struct {
	// Now stamps transitions, optional.
	Now func() uint32
	// ButtonIRQ is raised by PressButton, optional.
	ButtonIRQ func()

	lock     sync.Mutex
	led      []Transition
	tone     []Transition
	switches uint8
	button   bool
	tempC    float32
}

// NewSimIO creates a SimIO with all option switches open.
func NewSimIO() *SimIO {
	return &SimIO{switches: optionsMask, tempC: 27}
}

func (s *SimIO) now() uint32 {
	if s.Now != nil {
		return s.Now()
	}
	return uint32(time.Now().UnixNano() / int64(time.Millisecond))
}

// SetLED implements IO.
func (s *SimIO) SetLED(on bool) {
	s.lock.Lock()
	s.led = append(s.led, Transition{Ms: s.now(), On: on})
	s.lock.Unlock()
}

// SetTone implements IO.
func (s *SimIO) SetTone(on bool) {
	s.lock.Lock()
	s.tone = append(s.tone, Transition{Ms: s.now(), On: on})
	s.lock.Unlock()
}

// ReadOptionSwitches implements IO.
func (s *SimIO) ReadOptionSwitches() uint8 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.switches
}

// PushButtonPressed implements IO.
func (s *SimIO) PushButtonPressed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.button
}

// TempC implements IO.
func (s *SimIO) TempC() float32 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.tempC
}

// SetOptions closes the switches for the options set in opts.
func (s *SimIO) SetOptions(opts uint8) {
	s.lock.Lock()
	s.switches = ^opts & optionsMask
	s.lock.Unlock()
}

// SetButton sets the push-button state.
func (s *SimIO) SetButton(pressed bool) {
	s.lock.Lock()
	s.button = pressed
	s.lock.Unlock()
}

// PressButton simulates a press and release of the push-button, raising
// ButtonIRQ in the caller's goroutine.
func (s *SimIO) PressButton() {
	s.lock.Lock()
	irq := s.ButtonIRQ
	s.lock.Unlock()
	if irq != nil {
		irq()
	}
}

// SetTempC sets the temperature.
func (s *SimIO) SetTempC(c float32) {
	s.lock.Lock()
	s.tempC = c
	s.lock.Unlock()
}

// LED returns the recorded LED transitions.
func (s *SimIO) LED() []Transition {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Transition(nil), s.led...)
}

// Tone returns the recorded tone transitions.
func (s *SimIO) Tone() []Transition {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Transition(nil), s.tone...)
}

// LEDOn returns the current LED state.
func (s *SimIO) LEDOn() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.led) > 0 && s.led[len(s.led)-1].On
}
