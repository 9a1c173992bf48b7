package cmt

import (
	"errors"
	"fmt"
)

var (
	// ErrChannelFull indicates a non-blocking post found the channel full.
	// The message (and any string it owns) stays with the caller, except
	// for System.PostBothNoWait which releases the copies it failed to post.
	ErrChannelFull = errors.New("channel full")
	// ErrScheduleConflict indicates a message with the same ID is already scheduled.
	ErrScheduleConflict = errors.New("message already scheduled")
	// ErrSchedulerFull indicates no free slot for a scheduled message.
	ErrSchedulerFull = errors.New("no scheduled message slot available")
	// ErrPayloadMismatch indicates the payload is not the kind bound to the message ID.
	ErrPayloadMismatch = errors.New("payload does not match message id")
	// ErrAlreadyReleased indicates an owned string was released twice.
	ErrAlreadyReleased = errors.New("string already released")
)

// InvariantError reports a programming error, e.g. a message loop being
// started twice or from the wrong core. It is raised with panic and is not
// meant to be recovered.
type InvariantError struct {
	Core   CoreID
	Reason string
}

// Error implements error.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("core %s: %s", e.Core, e.Reason)
}
