package monitor

import (
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// DefaultWriterQueueDepth is the number of reports buffered per writer.
const DefaultWriterQueueDepth = 4

// Reporter encodes status snapshots and queues them to all attached
// PacketWriters. Each writer is drained by its own goroutine so a slow
// writer never blocks Publish: reports which don't fit its queue are
// dropped. A writer which fails is detached.
type Reporter struct {
	DeviceID   string
	QueueDepth int

	lock    sync.Mutex
	writers map[PacketWriter]*writerQueue
	wg      sync.WaitGroup
	dropped uint64
}

type writerQueue struct {
	writer PacketWriter
	pkts   chan []byte
	closed bool
}

// NewReporter creates a Reporter.
func NewReporter(deviceID string, writers ...PacketWriter) *Reporter {
	r := &Reporter{
		DeviceID:   deviceID,
		QueueDepth: DefaultWriterQueueDepth,
		writers:    make(map[PacketWriter]*writerQueue),
	}
	for _, w := range writers {
		r.Attach(w)
	}
	return r
}

// Attach adds a PacketWriter. Attaching the same writer again is a no-op.
func (r *Reporter) Attach(w PacketWriter) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.writers[w]; ok {
		return
	}
	depth := r.QueueDepth
	if depth <= 0 {
		depth = DefaultWriterQueueDepth
	}
	q := &writerQueue{writer: w, pkts: make(chan []byte, depth)}
	r.writers[w] = q
	r.wg.Add(1)
	go r.drain(q)
}

// Detach removes a PacketWriter, it returns false if w is not attached.
// Reports already queued are still written.
func (r *Reporter) Detach(w PacketWriter) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.detachLocked(w)
}

func (r *Reporter) detachLocked(w PacketWriter) bool {
	q, ok := r.writers[w]
	if !ok {
		return false
	}
	delete(r.writers, w)
	if !q.closed {
		q.closed = true
		close(q.pkts)
	}
	return true
}

// Writers returns the number of attached writers.
func (r *Reporter) Writers() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.writers)
}

// Dropped returns the number of reports dropped on full writer queues.
func (r *Reporter) Dropped() uint64 {
	return atomic.LoadUint64(&r.dropped)
}

// Close detaches all writers and waits until queued reports are written.
func (r *Reporter) Close() error {
	r.lock.Lock()
	for w := range r.writers {
		r.detachLocked(w)
	}
	r.lock.Unlock()
	r.wg.Wait()
	return nil
}

// Publish implements Publisher. It only queues the encoded report, write
// failures are logged by the writer goroutines.
func (r *Reporter) Publish(st *Status) error {
	if st.DeviceID == "" {
		withID := *st
		withID.DeviceID = r.DeviceID
		st = &withID
	}
	pkt, err := EncodeStatus(st)
	if err != nil {
		return err
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, q := range r.writers {
		select {
		case q.pkts <- pkt:
		default:
			atomic.AddUint64(&r.dropped, 1)
			glog.V(2).Infof("status writer queue full, report dropped")
		}
	}
	return nil
}

func (r *Reporter) drain(q *writerQueue) {
	defer r.wg.Done()
	for pkt := range q.pkts {
		if err := q.writer.WritePacket(pkt); err != nil {
			glog.Warningf("status writer detached: %v", err)
			r.lock.Lock()
			if r.writers[q.writer] == q {
				r.detachLocked(q.writer)
			}
			r.lock.Unlock()
			// discard what is left, Publish stopped queueing
			for range q.pkts {
			}
			return
		}
	}
}
