package protocol

import (
	"bytes"
	"testing"
)

func TestEncodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint16
		payload []byte
		verify  func(t *testing.T, msg []byte)
	}{
		{
			name:    "get universe data with empty payload",
			opcode:  OpGetUniverseData,
			payload: nil,
			verify: func(t *testing.T, msg []byte) {
				want := []byte{0x00, 0x04, 0x00, 0x00, 0x00}
				if !bytes.Equal(msg, want) {
					t.Errorf("message = % x, want % x", msg, want)
				}
			},
		},
		{
			name:    "set universe data header length field",
			opcode:  OpSetUniverseData,
			payload: make([]byte, 514),
			verify: func(t *testing.T, msg []byte) {
				if len(msg) != HeaderSize+514 {
					t.Fatalf("message length = %d, want %d", len(msg), HeaderSize+514)
				}
				// 514 = 0x0202 little-endian
				if msg[3] != 0x02 || msg[4] != 0x02 {
					t.Errorf("length field = %02x %02x, want 02 02", msg[3], msg[4])
				}
			},
		},
		{
			name:    "reserved byte and opcode bytes",
			opcode:  OpSetAddressesToValue,
			payload: []byte{0xAA},
			verify: func(t *testing.T, msg []byte) {
				if msg[0] != 0x00 {
					t.Errorf("reserved byte = 0x%02x, want 0x00", msg[0])
				}
				if msg[1] != 0x12 || msg[2] != 0x00 {
					t.Errorf("opcode bytes = %02x %02x, want 12 00", msg[1], msg[2])
				}
				if msg[5] != 0xAA {
					t.Errorf("payload byte = 0x%02x, want 0xAA", msg[5])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, EncodeMessage(tt.opcode, tt.payload))
		})
	}
}

// recordingWriter captures each Write call separately
type recordingWriter struct {
	writes [][]byte
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	w.writes = append(w.writes, buf)
	return len(p), nil
}

func TestWriteMessage(t *testing.T) {
	w := &recordingWriter{}
	payload := []byte{0x03, 0x00, 0x40}
	if err := WriteMessage(w, OpSetFramerate, payload); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	// Header and payload go out as two separate writes.
	if len(w.writes) != 2 {
		t.Fatalf("write count = %d, want 2", len(w.writes))
	}
	wantHeader := []byte{0x00, 0x05, 0x00, 0x03, 0x00}
	if !bytes.Equal(w.writes[0], wantHeader) {
		t.Errorf("header = % x, want % x", w.writes[0], wantHeader)
	}
	if !bytes.Equal(w.writes[1], payload) {
		t.Errorf("payload = % x, want % x", w.writes[1], payload)
	}
}

func TestWriteMessageEmptyPayload(t *testing.T) {
	w := &recordingWriter{}
	if err := WriteMessage(w, OpGetFramerate, nil); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if len(w.writes) != 1 {
		t.Fatalf("write count = %d, want 1 (no payload write)", len(w.writes))
	}
	wantHeader := []byte{0x00, 0x06, 0x00, 0x00, 0x00}
	if !bytes.Equal(w.writes[0], wantHeader) {
		t.Errorf("header = % x, want % x", w.writes[0], wantHeader)
	}
}

func TestWriteMessageOversizedPayload(t *testing.T) {
	w := &recordingWriter{}
	if err := WriteMessage(w, OpSetUniverseData, make([]byte, MaxPayloadSize+1)); err == nil {
		t.Error("expected error for oversized payload")
	}
	if len(w.writes) != 0 {
		t.Errorf("oversized payload still wrote %d chunks", len(w.writes))
	}
}
