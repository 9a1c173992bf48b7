package monitor

import (
	"encoding/binary"
	"io"
	"sync"
)

// StreamReadWriter implements PacketReadWriter on a byte stream.
// Each packet is prefixed by 4-byte (little-endian) indicate the length.
type StreamReadWriter struct {
	io.ReadWriter

	wlock sync.Mutex
}

// NewStreamReadWriter creates a StreamReadWriter with io.ReadWriter.
func NewStreamReadWriter(s io.ReadWriter) *StreamReadWriter {
	return &StreamReadWriter{ReadWriter: s}
}

// ReadPacket implements PacketReader.
func (p *StreamReadWriter) ReadPacket() ([]byte, error) {
	var size uint32
	if err := binary.Read(p, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter.
func (p *StreamReadWriter) WritePacket(pkt []byte) error {
	p.wlock.Lock()
	defer p.wlock.Unlock()
	size := uint32(len(pkt))
	if err := binary.Write(p, binary.LittleEndian, size); err != nil {
		return err
	}
	_, err := p.Write(pkt[:size])
	return err
}
