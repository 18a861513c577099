package protocol

import (
	"bytes"
	"encoding/binary"
)

// Reader decides when the accumulated inbound byte stream holds a complete
// response for one in-flight operation. Inbound data carries no framing of
// its own, so each operation installs the Reader matching its expected
// response shape before the request is written.
//
// Feed is called with the full accumulated buffer after every delivery and
// must be idempotent: it is invoked repeatedly as the buffer grows, and
// returns the response bytes exactly when enough data has arrived.
type Reader interface {
	// Feed reports whether buf now holds a complete response and, if so,
	// returns the response bytes. A false return means more bytes are
	// awaited.
	Feed(buf []byte) ([]byte, bool)
}

// readerState tracks progress through a response layout
type readerState int

const (
	stateAwaitingLength readerState = iota
	stateAwaitingBody
	stateComplete
)

// fixedReader completes once a known byte count has accumulated
type fixedReader struct {
	size  int
	state readerState
}

// FixedReader returns a Reader for responses of a known fixed size, such
// as the 512-byte universe dump or the 1-byte framerate reply.
func FixedReader(size int) Reader {
	return &fixedReader{size: size, state: stateAwaitingBody}
}

func (r *fixedReader) Feed(buf []byte) ([]byte, bool) {
	if len(buf) < r.size {
		return nil, false
	}
	r.state = stateComplete
	return buf[:r.size], true
}

// countReader handles "2-byte count, then count x elemSize bytes" layouts.
// It reads the count from the accumulated prefix to compute the required
// total length before declaring completion.
type countReader struct {
	elemSize int
	state    readerState
	need     int
}

// CountReader returns a Reader for count-prefixed element arrays: a
// little-endian uint16 element count followed by count elements of
// elemSize bytes each.
func CountReader(elemSize int) Reader {
	return &countReader{elemSize: elemSize, state: stateAwaitingLength}
}

func (r *countReader) Feed(buf []byte) ([]byte, bool) {
	if r.state == stateAwaitingLength {
		if len(buf) < 2 {
			return nil, false
		}
		count := int(binary.LittleEndian.Uint16(buf[0:2]))
		r.need = 2 + count*r.elemSize
		r.state = stateAwaitingBody
	}
	if len(buf) < r.need {
		return nil, false
	}
	r.state = stateComplete
	return buf[:r.need], true
}

// textReader handles the identify handshake: a text record that is complete
// once it ends with a double line-break.
type textReader struct {
	state readerState
}

// TextReader returns a Reader for double-line-break-terminated text records
func TextReader() Reader {
	return &textReader{state: stateAwaitingBody}
}

func (r *textReader) Feed(buf []byte) ([]byte, bool) {
	if bytes.HasSuffix(buf, []byte("\n\n")) || bytes.HasSuffix(buf, []byte("\r\n\r\n")) {
		r.state = stateComplete
		return buf, true
	}
	return nil, false
}
