package cmt

// Channel is a bounded FIFO of messages into one core. It has a single
// producer core and a single consumer core, plus any number of interrupt
// style producers restricted to PostNoWait.
type Channel struct {
	name  string
	ch    chan Msg
	clock Clock
}

// NewChannel creates a Channel holding up to depth messages.
func NewChannel(name string, depth int, clock Clock) *Channel {
	if depth < 1 {
		depth = 1
	}
	return &Channel{name: name, ch: make(chan Msg, depth), clock: clock}
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return c.name
}

// Len returns the number of queued messages.
func (c *Channel) Len() int {
	return len(c.ch)
}

// Cap returns the channel depth.
func (c *Channel) Cap() int {
	return cap(c.ch)
}

// PostBlocking posts msg, waiting as long as it takes for a free slot.
func (c *Channel) PostBlocking(msg Msg) {
	msg.T = c.clock.NowMs()
	c.ch <- msg
}

// PostNoWait posts msg if there is room, otherwise returns ErrChannelFull
// leaving the queue untouched.
func (c *Channel) PostNoWait(msg Msg) error {
	msg.T = c.clock.NowMs()
	select {
	case c.ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

// GetBlocking removes the oldest message, waiting for one if empty.
func (c *Channel) GetBlocking() Msg {
	return <-c.ch
}

// GetNoWait removes the oldest message if there is one.
func (c *Channel) GetNoWait() (Msg, bool) {
	select {
	case msg := <-c.ch:
		return msg, true
	default:
		return Msg{}, false
	}
}
