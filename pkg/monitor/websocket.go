package monitor

import (
	"golang.org/x/net/websocket"
)

// WebSocketReadWriter implements PacketReadWriter.
type WebSocketReadWriter websocket.Conn

// NewWebSocketReadWriter wraps websocket.Conn.
func NewWebSocketReadWriter(conn *websocket.Conn) *WebSocketReadWriter {
	return (*WebSocketReadWriter)(conn)
}

// ReadPacket implements PacketReader.
func (p *WebSocketReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *WebSocketReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// WebSocketHandler serves status reports to websocket clients. Each client
// is attached to the Reporter until it disconnects.
func WebSocketHandler(r *Reporter) websocket.Handler {
	return func(conn *websocket.Conn) {
		rw := NewWebSocketReadWriter(conn)
		r.Attach(rw)
		defer r.Detach(rw)
		// clients don't talk, reading only detects the close.
		for {
			if _, err := rw.ReadPacket(); err != nil {
				return
			}
		}
	}
}
