package cmt

// Options configures a System.
type Options struct {
	// ChannelDepth is the depth of each inbound channel.
	ChannelDepth int
	// SchedSlots is the number of scheduled messages each core can hold.
	SchedSlots int
	// PSAPeriodMs is the process status sample window.
	PSAPeriodMs uint32
	// Clock defaults to the system clock.
	Clock Clock
	// TempSensor is read when a sample window closes, optional.
	TempSensor func() float32
}

// Default option values.
const (
	DefaultChannelDepth = 16
	DefaultSchedSlots   = 16
)

// System is created once at startup and passed to everything which
// needs to reach the cores.
type System struct {
	clock Clock
	cores [NumCores]*Core
}

// NewSystem creates both cores.
func NewSystem(opts Options) *System {
	if opts.ChannelDepth <= 0 {
		opts.ChannelDepth = DefaultChannelDepth
	}
	if opts.SchedSlots <= 0 {
		opts.SchedSlots = DefaultSchedSlots
	}
	if opts.Clock == nil {
		opts.Clock = NewSystemClock()
	}
	s := &System{clock: opts.Clock}
	for id := range s.cores {
		s.cores[id] = newCore(s, CoreID(id), &opts)
	}
	return s
}

// Clock returns the system clock.
func (s *System) Clock() Clock {
	return s.clock
}

// Core returns the core by ID.
func (s *System) Core(id CoreID) *Core {
	return s.cores[id]
}

// BE returns the back-end core.
func (s *System) BE() *Core {
	return s.cores[BackEnd]
}

// UI returns the front-end/UI core.
func (s *System) UI() *Core {
	return s.cores[FrontEnd]
}

// PostBE posts to the back-end, blocking while its channel is full.
func (s *System) PostBE(msg Msg) {
	s.BE().Post(msg)
}

// PostBENoWait posts to the back-end without blocking.
func (s *System) PostBENoWait(msg Msg) error {
	return s.BE().PostNoWait(msg)
}

// PostUI posts to the UI, blocking while its channel is full.
func (s *System) PostUI(msg Msg) {
	s.UI().Post(msg)
}

// PostUINoWait posts to the UI without blocking.
func (s *System) PostUINoWait(msg Msg) error {
	return s.UI().PostNoWait(msg)
}

// PostBoth posts independent copies of msg to both cores, blocking.
func (s *System) PostBoth(msg Msg) {
	dup := msg.Clone()
	s.PostBE(msg)
	s.PostUI(dup)
}

// PostBothNoWait posts independent copies of msg to both cores without
// blocking. Unlike the single-core posts, ownership always moves: a copy
// that could not be posted is released here, including msg's own string
// when the back-end is full. The error reports the first failure.
func (s *System) PostBothNoWait(msg Msg) error {
	dup := msg.Clone()
	err := s.PostBENoWait(msg)
	if err != nil {
		msg.release()
	}
	if err1 := s.PostUINoWait(dup); err1 != nil {
		dup.release()
		if err == nil {
			err = err1
		}
	}
	return err
}

// LoopsRunning reports whether both message loops are running.
func (s *System) LoopsRunning() bool {
	return s.BE().Running() && s.UI().Running()
}

// ProcStatus returns the last process status of a core.
func (s *System) ProcStatus(id CoreID) ProcStatus {
	return s.cores[id].ProcStatus()
}

// SchedWaiting returns the number of scheduled messages on both cores.
func (s *System) SchedWaiting() int {
	return s.BE().Scheduler().Waiting() + s.UI().Scheduler().Waiting()
}
