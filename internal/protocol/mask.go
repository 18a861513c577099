package protocol

import (
	"fmt"
	"sort"
)

// ChannelMask is a set of channel addresses in [0, 511] selecting slots
// within a universe's value buffer.
type ChannelMask map[uint16]struct{}

// NewChannelMask builds a mask from the given channel addresses. Addresses
// outside [0, 511] are ignored.
func NewChannelMask(channels ...uint16) ChannelMask {
	m := make(ChannelMask, len(channels))
	for _, ch := range channels {
		m.Add(ch)
	}
	return m
}

// Add selects a channel. Addresses outside [0, 511] are ignored.
func (m ChannelMask) Add(channel uint16) {
	if channel < UniverseSize {
		m[channel] = struct{}{}
	}
}

// Has reports whether a channel is selected
func (m ChannelMask) Has(channel uint16) bool {
	_, ok := m[channel]
	return ok
}

// Channels returns the selected addresses in ascending order
func (m ChannelMask) Channels() []uint16 {
	out := make([]uint16, 0, len(m))
	for ch := range m {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BoundsError reports a mask encode/decode that would run past the end of
// its buffer.
type BoundsError struct {
	Offset int
	Count  int
	Size   int
}

// Error implements the error interface
func (e *BoundsError) Error() string {
	return fmt.Sprintf("mask bounds exceeded: offset %d + %d bytes > buffer size %d", e.Offset, e.Count, e.Size)
}

// Encode packs the mask into count bytes of dst starting at offset.
//
// Bit layout is MSB-first: channel i lands in byte i/8 at bit position
// 7-(i%8). Each destination byte is built by OR-ing its 8 single-bit
// contributions; bytes with no selected channels are written as zero.
// Channels beyond count*8 are not represented.
//
// Returns a BoundsError if offset+count exceeds the destination capacity.
func (m ChannelMask) Encode(dst []byte, offset, count int) error {
	if offset < 0 || count < 0 || offset+count > len(dst) {
		return &BoundsError{Offset: offset, Count: count, Size: len(dst)}
	}

	for i := 0; i < count; i++ {
		var b byte
		for bit := 0; bit < 8; bit++ {
			if m.Has(uint16(i*8 + bit)) {
				b |= 1 << (7 - bit)
			}
		}
		dst[offset+i] = b
	}
	return nil
}

// Pack returns the full 64-byte wire form of the mask
func (m ChannelMask) Pack() []byte {
	buf := make([]byte, MaskBytes)
	// Cannot fail: the buffer is exactly MaskBytes long.
	_ = m.Encode(buf, 0, MaskBytes)
	return buf
}

// DecodeMask reads count bytes of src starting at offset and returns the
// channel set they encode, using the same MSB-first bit layout as Encode.
//
// Returns a BoundsError if offset+count exceeds the source capacity.
func DecodeMask(src []byte, offset, count int) (ChannelMask, error) {
	if offset < 0 || count < 0 || offset+count > len(src) {
		return nil, &BoundsError{Offset: offset, Count: count, Size: len(src)}
	}

	m := make(ChannelMask)
	for i := 0; i < count; i++ {
		b := src[offset+i]
		if b == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if b&(1<<(7-bit)) != 0 {
				m.Add(uint16(i*8 + bit))
			}
		}
	}
	return m, nil
}
