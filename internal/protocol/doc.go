// Package protocol implements the Lumakit DL-series gateway binary protocol.
//
// This package handles construction of outbound request messages, detection
// and extraction of complete responses from the raw inbound byte stream, and
// the channel-mask codec shared by several operations.
//
// # Message Format
//
// Every outbound message has a fixed 5-byte header followed by the payload:
//   - Reserved byte: 0x00
//   - Opcode: 2 bytes (little-endian)
//   - Payload length: 2 bytes (little-endian)
//   - Payload: variable length
//
// All multi-byte numeric fields in payloads and responses are little-endian,
// and every count field precedes the elements it counts.
//
// # Responses
//
// The gateway sends responses as an unframed byte stream: there is no header
// on inbound data, so the only way to recognize a complete response is to
// know, per request, what shape the reply takes. Reader values encode that
// knowledge as small state machines fed with the accumulated inbound buffer
// after every delivery:
//   - FixedReader: complete once a known byte count has arrived (e.g. the
//     512-byte universe dump)
//   - CountReader: a 2-byte element count followed by count fixed-size
//     elements (e.g. the patch list)
//   - TextReader: the identify handshake, a JSON record terminated by a
//     double line-break
//
// # Channel Masks
//
// A channel mask selects addresses within a universe's 512 slots. On the wire
// it is packed 8 channels per byte, most-significant bit first: channel 0 is
// bit 7 of byte 0, channel 7 is bit 0 of byte 0, channel 8 is bit 7 of
// byte 1, and so on across 64 bytes.
//
// # Usage Example
//
//	msg := protocol.EncodeMessage(protocol.OpGetUniverseData, protocol.AppendUniverse(nil, 3))
//	// write msg to the endpoint, then feed inbound chunks:
//	r := protocol.FixedReader(protocol.UniverseSize)
//	body, done := r.Feed(accumulated)
package protocol
