package cmt

import "sync/atomic"

// Str is a string owned by exactly one holder at a time. Posting a message
// carrying a Str hands it over to the receiving handler, which must call
// Release once it is done.
type Str struct {
	s        string
	released int32
}

// NewStr creates an owned string.
func NewStr(s string) *Str {
	return &Str{s: s}
}

// Kind implements Payload.
func (s *Str) Kind() PayloadKind { return KindStr }

// String returns the content, or "" once released.
func (s *Str) String() string {
	if s.Released() {
		return ""
	}
	return s.s
}

// Release gives the string up. A second release is an error.
func (s *Str) Release() error {
	if !atomic.CompareAndSwapInt32(&s.released, 0, 1) {
		return ErrAlreadyReleased
	}
	return nil
}

// Released reports whether Release was called.
func (s *Str) Released() bool {
	return atomic.LoadInt32(&s.released) != 0
}

// Clone returns a new, unreleased Str with the same content.
func (s *Str) Clone() *Str {
	return &Str{s: s.s}
}
