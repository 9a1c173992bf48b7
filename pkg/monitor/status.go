package monitor

import (
	"github.com/robotalks/kevsays/pkg/cmt"
	"github.com/robotalks/kevsays/pkg/framework"
)

// Status is a snapshot of the gadget.
type Status struct {
	DeviceID     string
	TimeMs       uint32
	Cores        []cmt.ProcStatus
	Options      uint8
	Debug        bool
	SchedWaiting int
}

// Publisher publishes status snapshots. It is called from a message
// handler so it must not block for long.
type Publisher interface {
	Publish(*Status) error
}

// PublishFunc is the func form of Publisher.
type PublishFunc func(*Status) error

// Publish implements Publisher.
func (f PublishFunc) Publish(st *Status) error {
	return f(st)
}

// Publishers publishes to all, aggregating errors.
type Publishers []Publisher

// Publish implements Publisher.
func (p Publishers) Publish(st *Status) error {
	var errs framework.AggregatedError
	for _, pub := range p {
		errs.Add(pub.Publish(st))
	}
	return errs.Aggregate()
}
