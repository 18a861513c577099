// Package transport provides the byte-stream endpoints a gateway can be
// reached over: a local serial port or a network WebSocket bridge.
//
// Both are exposed through the Endpoint interface, an exclusively-owned
// io.ReadWriteCloser carrying the raw protocol byte stream. Open picks the
// implementation from the endpoint path: "ws://" and "wss://" paths dial a
// WebSocket bridge, anything else is treated as a serial device path.
package transport

import (
	"io"
	"strings"
)

// Endpoint is one byte-stream connection to a physical gateway. The owner
// must serialize writes and is responsible for closing it.
type Endpoint interface {
	io.ReadWriteCloser
}

// OpenFunc opens the endpoint at a path. Device construction accepts one so
// tests can substitute in-memory endpoints.
type OpenFunc func(path string) (Endpoint, error)

// IsNetworkPath reports whether a path names a WebSocket bridge rather
// than a serial device.
func IsNetworkPath(path string) bool {
	return strings.HasPrefix(path, "ws://") || strings.HasPrefix(path, "wss://")
}

// Open opens the endpoint at path, choosing serial or WebSocket transport
// from the path format.
func Open(path string) (Endpoint, error) {
	if IsNetworkPath(path) {
		return OpenWebSocket(path)
	}
	return OpenSerial(path)
}
