package cmt

import (
	"fmt"
)

// MsgID identifies a message. IDs are grouped in ranges by who handles them.
type MsgID uint16

// Message ID ranges.
const (
	MsgRangeCommon  MsgID = 0x0000
	MsgRangeBackEnd MsgID = 0x0100
	MsgRangeUI      MsgID = 0x0200

	msgRangeMask MsgID = 0xff00
)

// Common messages, handled by both cores.
const (
	MsgCommonNoop MsgID = MsgRangeCommon + iota
	MsgConfigChanged
	MsgDebugChanged
)

// Back-end messages.
const (
	MsgBackendNoop MsgID = MsgRangeBackEnd + iota
	MsgBETest
	MsgCmtSleep
	MsgUIInitialized
	MsgBEStatusPulse
)

// Front-end/UI messages.
const (
	MsgUINoop MsgID = MsgRangeUI + iota
	MsgBEInitialized
	MsgDisplayMessage
	MsgUIStatusPulse
)

// Range returns the range the ID belongs to.
func (id MsgID) Range() MsgID {
	return id & msgRangeMask
}

// String implements fmt.Stringer.
func (id MsgID) String() string {
	if t, ok := msgTypes[id]; ok {
		return t.name
	}
	return fmt.Sprintf("MSG_%04X", uint16(id))
}

// PayloadKind enumerates the payload variants.
type PayloadKind uint8

// Payload kinds.
const (
	KindNone PayloadKind = iota
	KindBool
	KindTimeMs
	KindTimeUs
	KindSleep
	KindStr
	KindStatus
)

var kindNames = [...]string{"none", "bool", "ms", "us", "sleep", "str", "status"}

// String implements fmt.Stringer.
func (k PayloadKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

type msgType struct {
	name string
	kind PayloadKind
}

var msgTypes = map[MsgID]msgType{
	MsgCommonNoop:     {"MSG_COMMON_NOOP", KindNone},
	MsgConfigChanged:  {"MSG_CONFIG_CHANGED", KindStatus},
	MsgDebugChanged:   {"MSG_DEBUG_CHANGED", KindBool},
	MsgBackendNoop:    {"MSG_BACKEND_NOOP", KindNone},
	MsgBETest:         {"MSG_BE_TEST", KindTimeUs},
	MsgCmtSleep:       {"MSG_CMT_SLEEP", KindSleep},
	MsgUIInitialized:  {"MSG_UI_INITIALIZED", KindNone},
	MsgBEStatusPulse:  {"MSG_BE_STATUS_PULSE", KindTimeMs},
	MsgUINoop:         {"MSG_UI_NOOP", KindNone},
	MsgBEInitialized:  {"MSG_BE_INITIALIZED", KindNone},
	MsgDisplayMessage: {"MSG_DISPLAY_MESSAGE", KindStr},
	MsgUIStatusPulse:  {"MSG_UI_STATUS_PULSE", KindTimeMs},
}

// PayloadKindOf returns the payload kind bound to the ID.
// Unknown IDs carry no payload.
func PayloadKindOf(id MsgID) (PayloadKind, bool) {
	t, ok := msgTypes[id]
	return t.kind, ok
}

// Payload is the data carried by a message.
type Payload interface {
	Kind() PayloadKind
}

// NoData is the empty payload.
type NoData struct{}

// Bool payload.
type Bool bool

// TimeMs is a millisecond timestamp payload.
type TimeMs uint32

// TimeUs is a microsecond timestamp payload.
type TimeUs uint64

// Status is a status code payload.
type Status int32

// SleepFunc is called when a deferred callback expires.
type SleepFunc func(userData interface{})

// Sleep is the deferred callback payload.
type Sleep struct {
	Fn       SleepFunc
	UserData interface{}
}

// Kind implements Payload.
func (NoData) Kind() PayloadKind { return KindNone }

// Kind implements Payload.
func (Bool) Kind() PayloadKind { return KindBool }

// Kind implements Payload.
func (TimeMs) Kind() PayloadKind { return KindTimeMs }

// Kind implements Payload.
func (TimeUs) Kind() PayloadKind { return KindTimeUs }

// Kind implements Payload.
func (Status) Kind() PayloadKind { return KindStatus }

// Kind implements Payload.
func (Sleep) Kind() PayloadKind { return KindSleep }

// Msg is a unit of work posted to a core.
type Msg struct {
	ID   MsgID
	Data Payload
	// T is the millisecond time the message was posted, set when posting.
	T uint32
}

// NewMsg creates a message, checking the payload against the ID.
// A nil payload is NoData.
func NewMsg(id MsgID, data Payload) (Msg, error) {
	if data == nil {
		data = NoData{}
	}
	kind, _ := PayloadKindOf(id)
	if data.Kind() != kind {
		return Msg{}, fmt.Errorf("%s expects %s, got %s: %w", id, kind, data.Kind(), ErrPayloadMismatch)
	}
	return Msg{ID: id, Data: data}, nil
}

// MustMsg is NewMsg which panics on mismatch. Use with constant arguments.
func MustMsg(id MsgID, data Payload) Msg {
	msg, err := NewMsg(id, data)
	if err != nil {
		panic(err)
	}
	return msg
}

// Str returns the owned string, or nil if the message doesn't carry one.
func (m *Msg) Str() *Str {
	s, _ := m.Data.(*Str)
	return s
}

// Clone returns an independent copy. An owned string is duplicated so
// each copy can be released on its own.
func (m Msg) Clone() Msg {
	if s, ok := m.Data.(*Str); ok && s != nil {
		m.Data = s.Clone()
	}
	return m
}

// release frees the owned string, if any. Used when the message is dropped.
func (m *Msg) release() {
	if s := m.Str(); s != nil && !s.Released() {
		s.Release()
	}
}

func (m Msg) String() string {
	if m.Data == nil || m.Data.Kind() == KindNone {
		return m.ID.String()
	}
	return fmt.Sprintf("%s(%v)", m.ID, m.Data)
}
