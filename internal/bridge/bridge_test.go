package bridge

import (
	"bytes"
	"testing"

	"github.com/lumakit/dmxlink/internal/config"
	"github.com/lumakit/dmxlink/internal/device"
	"github.com/lumakit/dmxlink/internal/protocol"
)

type recordingWriter struct {
	universes []uint16
	frames    [][]byte
	err       error
}

func (w *recordingWriter) SetUniverseData(universe uint16, values []byte) error {
	if w.err != nil {
		return w.err
	}
	w.universes = append(w.universes, universe)
	w.frames = append(w.frames, values)
	return nil
}

func testConfig() *config.BridgeConfig {
	return &config.BridgeConfig{
		Universes: []config.BridgeMapping{
			{SACN: 1, Gateway: 0},
			{SACN: 2, Gateway: 7},
		},
	}
}

func TestForwardMapsUniverses(t *testing.T) {
	w := &recordingWriter{}
	b := New(w, testConfig())

	frame := make([]byte, protocol.UniverseSize)
	frame[0] = 255
	frame[511] = 128

	b.forward(2, frame)

	if len(w.universes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(w.universes))
	}
	if w.universes[0] != 7 {
		t.Errorf("wrote to universe %d, want 7", w.universes[0])
	}
	if !bytes.Equal(w.frames[0], frame) {
		t.Error("forwarded frame does not match received frame")
	}
}

func TestForwardIgnoresUnmappedUniverse(t *testing.T) {
	w := &recordingWriter{}
	b := New(w, testConfig())

	b.forward(9, make([]byte, protocol.UniverseSize))

	if len(w.universes) != 0 {
		t.Errorf("expected no writes for unmapped universe, got %d", len(w.universes))
	}
}

func TestForwardPadsShortFrames(t *testing.T) {
	w := &recordingWriter{}
	b := New(w, testConfig())

	// Sources may transmit fewer than 512 slots
	b.forward(1, []byte{10, 20, 30})

	if len(w.frames) != 1 {
		t.Fatalf("expected 1 write, got %d", len(w.frames))
	}
	frame := w.frames[0]
	if len(frame) != protocol.UniverseSize {
		t.Fatalf("frame length = %d, want %d", len(frame), protocol.UniverseSize)
	}
	if frame[0] != 10 || frame[1] != 20 || frame[2] != 30 {
		t.Error("frame data not preserved")
	}
	for i := 3; i < len(frame); i++ {
		if frame[i] != 0 {
			t.Fatalf("frame[%d] = %d, want 0", i, frame[i])
		}
	}
}

func TestForwardSwallowsBusy(t *testing.T) {
	w := &recordingWriter{err: device.ErrBusy}
	b := New(w, testConfig())

	// Must not panic or retry; the next frame supersedes the dropped one
	b.forward(1, make([]byte, protocol.UniverseSize))
}

func TestStartRejectsEmptyMapping(t *testing.T) {
	b := New(&recordingWriter{}, &config.BridgeConfig{})
	if err := b.Start(); err == nil {
		t.Error("Start with no mappings should fail")
	}
}
