package protocol

import (
	"encoding/binary"
	"fmt"
)

// Response parsers. Each consumes the complete response bytes extracted by
// the matching Reader and decodes the typed result.

// ParseUniverseData decodes a GetUniverseData response: the raw 512-byte
// channel value buffer.
func ParseUniverseData(data []byte) ([]byte, error) {
	if len(data) < UniverseSize {
		return nil, fmt.Errorf("universe data too short: %d bytes (expected %d)", len(data), UniverseSize)
	}
	values := make([]byte, UniverseSize)
	copy(values, data)
	return values, nil
}

// ParseMaskUniverses decodes a GetMaskUniverses response: a 2-byte count
// followed by count universe numbers.
func ParseMaskUniverses(data []byte) ([]uint16, error) {
	count, body, err := countedBody(data, 2, "mask universe list")
	if err != nil {
		return nil, err
	}
	universes := make([]uint16, count)
	for i := 0; i < count; i++ {
		universes[i] = binary.LittleEndian.Uint16(body[i*2:])
	}
	return universes, nil
}

// ParseMaskUniverseData decodes a GetMaskUniverseData response: the 64-byte
// packed mask followed by the 512-byte value buffer.
func ParseMaskUniverseData(data []byte) (ChannelMask, []byte, error) {
	if len(data) < MaskBytes+UniverseSize {
		return nil, nil, fmt.Errorf("mask universe data too short: %d bytes (expected %d)",
			len(data), MaskBytes+UniverseSize)
	}
	mask, err := DecodeMask(data, 0, MaskBytes)
	if err != nil {
		return nil, nil, err
	}
	values := make([]byte, UniverseSize)
	copy(values, data[MaskBytes:])
	return mask, values, nil
}

// ParsePatches decodes a patch list response: a 2-byte count followed by
// count x (input16 + output16 + mask16) entries.
func ParsePatches(data []byte) ([]Patch, error) {
	count, body, err := countedBody(data, 6, "patch list")
	if err != nil {
		return nil, err
	}
	patches := make([]Patch, count)
	for i := 0; i < count; i++ {
		e := body[i*6:]
		patches[i] = Patch{
			InputUniverse:  binary.LittleEndian.Uint16(e[0:2]),
			OutputUniverse: binary.LittleEndian.Uint16(e[2:4]),
			MaskUniverse:   binary.LittleEndian.Uint16(e[4:6]),
		}
	}
	return patches, nil
}

// ParsePorts decodes a port list response: a 2-byte count followed by
// count x (universe16 + mode8) entries.
func ParsePorts(data []byte) ([]Port, error) {
	count, body, err := countedBody(data, 3, "port list")
	if err != nil {
		return nil, err
	}
	ports := make([]Port, count)
	for i := 0; i < count; i++ {
		e := body[i*3:]
		ports[i] = Port{
			Universe: binary.LittleEndian.Uint16(e[0:2]),
			Mode:     PortMode(e[2]),
		}
	}
	return ports, nil
}

// ParseValues decodes a values-by-address response: a 2-byte count followed
// by count one-byte channel values, in request order.
func ParseValues(data []byte) ([]byte, error) {
	count, body, err := countedBody(data, 1, "value list")
	if err != nil {
		return nil, err
	}
	values := make([]byte, count)
	copy(values, body)
	return values, nil
}

// ParseMaskValues decodes a mask-values-by-address response: a 2-byte count
// followed by count x (masking8 + value8) pairs, in request order.
func ParseMaskValues(data []byte) ([]MaskValue, error) {
	count, body, err := countedBody(data, 2, "mask value list")
	if err != nil {
		return nil, err
	}
	values := make([]MaskValue, count)
	for i := 0; i < count; i++ {
		values[i] = MaskValue{Masking: body[i*2], Value: body[i*2+1]}
	}
	return values, nil
}

// ParseFramerate decodes a GetFramerate response: a single byte
func ParseFramerate(data []byte) (uint8, error) {
	if len(data) < 1 {
		return 0, fmt.Errorf("framerate response too short: %d bytes", len(data))
	}
	return data[0], nil
}

// countedBody validates a count-prefixed response and returns the element
// count and the element bytes.
func countedBody(data []byte, elemSize int, what string) (int, []byte, error) {
	if len(data) < 2 {
		return 0, nil, fmt.Errorf("%s too short: %d bytes (no count field)", what, len(data))
	}
	count := int(binary.LittleEndian.Uint16(data[0:2]))
	if len(data) < 2+count*elemSize {
		return 0, nil, fmt.Errorf("%s truncated: %d bytes for %d elements of size %d",
			what, len(data), count, elemSize)
	}
	return count, data[2:], nil
}
