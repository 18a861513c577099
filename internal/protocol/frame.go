package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPayloadSize is the largest payload the 16-bit length field can carry.
const MaxPayloadSize = 0xFFFF

// EncodeMessage builds a complete outbound message: the 5-byte header
// followed by the payload.
//
// Wire layout:
//
//	[0]     0x00           Reserved
//	[1-2]   opcode         Operation code (little-endian uint16)
//	[3-4]   length         Payload length (little-endian uint16)
//	[5+]    payload        Payload bytes
func EncodeMessage(opcode uint16, payload []byte) []byte {
	msg := make([]byte, HeaderSize+len(payload))
	// msg[0] is the reserved 0x00 byte, zero-filled by make()
	binary.LittleEndian.PutUint16(msg[1:3], opcode)
	binary.LittleEndian.PutUint16(msg[3:5], uint16(len(payload)))
	copy(msg[HeaderSize:], payload)
	return msg
}

// WriteMessage frames and sends one message to the endpoint: header first,
// then the payload as a second write. No response is awaited here; response
// handling is layered above.
func WriteMessage(w io.Writer, opcode uint16, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)
	}

	header := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(header[1:3], opcode)
	binary.LittleEndian.PutUint16(header[3:5], uint16(len(payload)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", OpcodeName(opcode), err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("failed to write payload for %s: %w", OpcodeName(opcode), err)
		}
	}
	return nil
}
