package cmt

import (
	"sync"

	"github.com/golang/glog"
)

type schedEntry struct {
	msg  Msg
	due  uint32
	live bool
}

// Scheduler holds messages to be posted into its core's own channel once
// their time has come. Fired messages go through ordinary dispatch.
//
// At most one entry per message ID may be live, except MsgCmtSleep which
// carries independent deferred callbacks.
//
// Cancel is best effort: once an entry has fired it is no longer found
// even if the message is still waiting in the channel.
type Scheduler struct {
	clock   Clock
	out     *Channel
	entries []schedEntry
	count   int
	lock    sync.Mutex
}

func newScheduler(slots int, clock Clock, out *Channel) *Scheduler {
	if slots < 1 {
		slots = 1
	}
	return &Scheduler{clock: clock, out: out, entries: make([]schedEntry, slots)}
}

// ScheduleIn schedules msg to be posted in ms milliseconds.
// On error the message, and any string it owns, stays with the caller.
func (s *Scheduler) ScheduleIn(ms int32, msg Msg) error {
	if ms < 0 {
		ms = 0
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if msg.ID != MsgCmtSleep && s.findLocked(msg.ID) >= 0 {
		return ErrScheduleConflict
	}
	for i := range s.entries {
		if e := &s.entries[i]; !e.live {
			*e = schedEntry{msg: msg, due: s.clock.NowMs() + uint32(ms), live: true}
			s.count++
			return nil
		}
	}
	return ErrSchedulerFull
}

// Cancel removes scheduled messages with id. It reports whether any was found.
func (s *Scheduler) Cancel(id MsgID) bool {
	var found bool
	s.lock.Lock()
	for i := range s.entries {
		if e := &s.entries[i]; e.live && e.msg.ID == id {
			e.msg.release()
			*e = schedEntry{}
			s.count--
			found = true
		}
	}
	s.lock.Unlock()
	return found
}

// Exists reports whether a message with id is scheduled.
func (s *Scheduler) Exists(id MsgID) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.findLocked(id) >= 0
}

// Waiting returns the number of scheduled messages.
func (s *Scheduler) Waiting() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.count
}

func (s *Scheduler) findLocked(id MsgID) int {
	for i := range s.entries {
		if s.entries[i].live && s.entries[i].msg.ID == id {
			return i
		}
	}
	return -1
}

// fire posts due messages, earliest first, and returns how many were posted.
// An entry whose post fails stays scheduled and is retried on the next call.
func (s *Scheduler) fire() (fired int) {
	now := s.clock.NowMs()
	s.lock.Lock()
	defer s.lock.Unlock()
	for s.count > 0 {
		next := -1
		for i := range s.entries {
			e := &s.entries[i]
			if !e.live || !msElapsed(now, e.due) {
				continue
			}
			if next < 0 || int32(e.due-s.entries[next].due) < 0 {
				next = i
			}
		}
		if next < 0 {
			return
		}
		e := &s.entries[next]
		if err := s.out.PostNoWait(e.msg); err != nil {
			glog.Warningf("%s: scheduled %s not posted: %v", s.out.Name(), e.msg.ID, err)
			return
		}
		*e = schedEntry{}
		s.count--
		fired++
	}
	return
}
