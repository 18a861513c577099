package transport

import (
	"fmt"

	"go.bug.st/serial"
)

// BaudRate is the fixed line rate for DL-series gateways. The devices do
// not negotiate; every firmware revision runs the port at 115200 8N1.
const BaudRate = 115200

// serialEndpoint wraps an open serial port
type serialEndpoint struct {
	port serial.Port
}

// OpenSerial opens the serial device at path with the fixed gateway
// configuration (115200 8N1, no flow control).
func OpenSerial(path string) (Endpoint, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}
	return &serialEndpoint{port: port}, nil
}

// Read reads inbound bytes from the port
func (e *serialEndpoint) Read(p []byte) (int, error) {
	return e.port.Read(p)
}

// Write writes outbound bytes to the port
func (e *serialEndpoint) Write(p []byte) (int, error) {
	return e.port.Write(p)
}

// Close closes the port
func (e *serialEndpoint) Close() error {
	return e.port.Close()
}

// ListSerialPorts returns the serial device paths present on this host, in
// the order the platform reports them. This is the endpoint enumeration
// capability discovery consumes to find connect candidates.
func ListSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return ports, nil
}
