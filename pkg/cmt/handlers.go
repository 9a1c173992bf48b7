package cmt

// Handler handles a message dispatched by a core's loop.
type Handler interface {
	HandleMsg(*Core, *Msg)
}

// HandleMsgFunc is the func form of Handler.
type HandleMsgFunc func(*Core, *Msg)

// HandleMsg implements Handler.
func (f HandleMsgFunc) HandleMsg(c *Core, msg *Msg) {
	f(c, msg)
}

// HandlerEntry binds a message ID to a handler.
type HandlerEntry struct {
	ID      MsgID
	Handler Handler
}

// HandlerTable is searched in order and the first entry with a matching
// ID wins. Put the most frequent messages first.
type HandlerTable []HandlerEntry

// Lookup returns the handler for id, nil if none.
func (t HandlerTable) Lookup(id MsgID) Handler {
	for _, e := range t {
		if e.ID == id {
			return e.Handler
		}
	}
	return nil
}

// IdleFunc is something to do when there are no messages.
// It should do one small task and return.
type IdleFunc func(*Core)

// IdleRotation calls idle functions one per step, in order, wrapping
// after the last.
type IdleRotation struct {
	funcs []IdleFunc
	next  int
}

// NewIdleRotation creates an IdleRotation.
func NewIdleRotation(funcs ...IdleFunc) *IdleRotation {
	return &IdleRotation{funcs: funcs}
}

// Len returns the number of idle functions.
func (r *IdleRotation) Len() int {
	return len(r.funcs)
}

// Step calls the next idle function. It returns false if there are none.
func (r *IdleRotation) Step(c *Core) bool {
	if len(r.funcs) == 0 {
		return false
	}
	fn := r.funcs[r.next]
	if r.next++; r.next >= len(r.funcs) {
		r.next = 0
	}
	fn(c)
	return true
}

// LoopContext is what a core's message loop runs with.
type LoopContext struct {
	Handlers  HandlerTable
	IdleFuncs []IdleFunc
}
