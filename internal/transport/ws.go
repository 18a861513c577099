package transport

import (
	"fmt"
	"io"

	"github.com/gorilla/websocket"
)

// wsEndpoint adapts a WebSocket connection to the byte-stream Endpoint
// interface. Bridges relay the serial byte stream as binary messages;
// message boundaries carry no protocol meaning, so Read hands out message
// bytes as a plain stream.
type wsEndpoint struct {
	conn     *websocket.Conn
	leftover []byte
}

// OpenWebSocket dials a gateway bridge at a ws:// or wss:// URL
func OpenWebSocket(url string) (Endpoint, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial bridge %s: %w", url, err)
	}
	return &wsEndpoint{conn: conn}, nil
}

// Read returns bytes from the current binary message, fetching the next
// message once the current one is drained.
func (e *wsEndpoint) Read(p []byte) (int, error) {
	for len(e.leftover) == 0 {
		msgType, data, err := e.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		// Text messages (bridge status chatter) are not protocol bytes.
		if msgType != websocket.BinaryMessage {
			continue
		}
		e.leftover = data
	}

	n := copy(p, e.leftover)
	e.leftover = e.leftover[n:]
	return n, nil
}

// Write sends outbound bytes as one binary message
func (e *wsEndpoint) Write(p []byte) (int, error) {
	if err := e.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the underlying connection
func (e *wsEndpoint) Close() error {
	// Best-effort close frame; the peer may already be gone.
	_ = e.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return e.conn.Close()
}

var _ io.ReadWriteCloser = (*wsEndpoint)(nil)
