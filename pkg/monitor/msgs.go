package monitor

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/kevsays/pkg/cmt"
)

// StatusReport is the wire form of Status.
type StatusReport struct {
	DeviceId     string        `protobuf:"bytes,1,opt,name=device_id,proto3" json:"device_id,omitempty"`
	TimeMs       uint32        `protobuf:"varint,2,opt,name=time_ms,proto3" json:"time_ms,omitempty"`
	Cores        []*CoreStatus `protobuf:"bytes,3,rep,name=cores,proto3" json:"cores,omitempty"`
	Options      uint32        `protobuf:"varint,4,opt,name=options,proto3" json:"options,omitempty"`
	Debug        bool          `protobuf:"varint,5,opt,name=debug,proto3" json:"debug,omitempty"`
	SchedWaiting uint32        `protobuf:"varint,6,opt,name=sched_waiting,proto3" json:"sched_waiting,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *StatusReport) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusReport) Reset() { *m = StatusReport{} }

// String implements proto.Message.
func (m *StatusReport) String() string { return proto.CompactTextString(m) }

// CoreStatus is the wire form of cmt.ProcStatus.
type CoreStatus struct {
	Core          uint32  `protobuf:"varint,1,opt,name=core,proto3" json:"core,omitempty"`
	WindowStartMs uint32  `protobuf:"varint,2,opt,name=window_start_ms,proto3" json:"window_start_ms,omitempty"`
	WindowMs      uint32  `protobuf:"varint,3,opt,name=window_ms,proto3" json:"window_ms,omitempty"`
	ActiveUs      uint64  `protobuf:"varint,4,opt,name=active_us,proto3" json:"active_us,omitempty"`
	IdleUs        uint64  `protobuf:"varint,5,opt,name=idle_us,proto3" json:"idle_us,omitempty"`
	Retrieved     uint32  `protobuf:"varint,6,opt,name=retrieved,proto3" json:"retrieved,omitempty"`
	IdlePasses    uint32  `protobuf:"varint,7,opt,name=idle_passes,proto3" json:"idle_passes,omitempty"`
	TempC         float32 `protobuf:"fixed32,8,opt,name=temp_c,proto3" json:"temp_c,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *CoreStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CoreStatus) Reset() { *m = CoreStatus{} }

// String implements proto.Message.
func (m *CoreStatus) String() string { return proto.CompactTextString(m) }

// NewStatusReport converts a Status.
func NewStatusReport(st *Status) *StatusReport {
	r := &StatusReport{
		DeviceId:     st.DeviceID,
		TimeMs:       st.TimeMs,
		Options:      uint32(st.Options),
		Debug:        st.Debug,
		SchedWaiting: uint32(st.SchedWaiting),
		Cores:        make([]*CoreStatus, 0, len(st.Cores)),
	}
	for _, ps := range st.Cores {
		r.Cores = append(r.Cores, &CoreStatus{
			Core:          uint32(ps.Core),
			WindowStartMs: ps.WindowStartMs,
			WindowMs:      ps.WindowMs,
			ActiveUs:      ps.ActiveUs,
			IdleUs:        ps.IdleUs,
			Retrieved:     ps.Retrieved,
			IdlePasses:    ps.IdlePasses,
			TempC:         ps.TempC,
		})
	}
	return r
}

// ProcStatus converts back to cmt.ProcStatus.
func (m *CoreStatus) ProcStatus() cmt.ProcStatus {
	return cmt.ProcStatus{
		Core:          cmt.CoreID(m.Core),
		WindowStartMs: m.WindowStartMs,
		WindowMs:      m.WindowMs,
		ActiveUs:      m.ActiveUs,
		IdleUs:        m.IdleUs,
		Retrieved:     m.Retrieved,
		IdlePasses:    m.IdlePasses,
		TempC:         m.TempC,
	}
}

// EncodeStatus encodes a Status into a packet.
func EncodeStatus(st *Status) ([]byte, error) {
	return proto.Marshal(NewStatusReport(st))
}

// DecodeStatusReport decodes a packet.
func DecodeStatusReport(data []byte) (*StatusReport, error) {
	var r StatusReport
	if err := proto.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
