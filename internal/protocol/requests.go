package protocol

import (
	"encoding/binary"
	"fmt"
)

// Request payload builders. Each returns the payload bytes for one operation
// from the catalog; EncodeMessage/WriteMessage add the header.

// AppendUniverse appends a universe number as a little-endian uint16
func AppendUniverse(dst []byte, universe uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, universe)
}

// SetUniverseDataPayload builds the SetUniverseData payload: universe number
// followed by exactly 512 channel values. Shorter input is zero-padded;
// longer input is an error.
func SetUniverseDataPayload(universe uint16, values []byte) ([]byte, error) {
	if len(values) > UniverseSize {
		return nil, fmt.Errorf("universe data too long: %d bytes (max %d)", len(values), UniverseSize)
	}
	payload := make([]byte, 2+UniverseSize)
	binary.LittleEndian.PutUint16(payload[0:2], universe)
	copy(payload[2:], values)
	return payload, nil
}

// AddressValuesPayload builds the SetAddressValues payload: N x
// (universe16 + address16 + value8) sparse channel writes.
func AddressValuesPayload(pairs []AddressValue) []byte {
	payload := make([]byte, 0, len(pairs)*5)
	for _, p := range pairs {
		payload = binary.LittleEndian.AppendUint16(payload, p.Universe)
		payload = binary.LittleEndian.AppendUint16(payload, p.Address)
		payload = append(payload, p.Value)
	}
	return payload
}

// MaskUniverseDataPayload builds the SetMaskUniverseData payload: universe
// number, 64-byte packed mask, then exactly 512 channel values.
func MaskUniverseDataPayload(universe uint16, mask ChannelMask, values []byte) ([]byte, error) {
	if len(values) > UniverseSize {
		return nil, fmt.Errorf("universe data too long: %d bytes (max %d)", len(values), UniverseSize)
	}
	payload := make([]byte, 2+MaskBytes+UniverseSize)
	binary.LittleEndian.PutUint16(payload[0:2], universe)
	if err := mask.Encode(payload, 2, MaskBytes); err != nil {
		return nil, err
	}
	copy(payload[2+MaskBytes:], values)
	return payload, nil
}

// MaskAddressValuesPayload builds the SetMaskAddressValues payload: universe
// number then N x (address16 + masking8 + value8).
func MaskAddressValuesPayload(universe uint16, entries []MaskAddressValue) []byte {
	payload := make([]byte, 0, 2+len(entries)*4)
	payload = binary.LittleEndian.AppendUint16(payload, universe)
	for _, e := range entries {
		payload = binary.LittleEndian.AppendUint16(payload, e.Address)
		payload = append(payload, e.Masking, e.Value)
	}
	return payload
}

// PatchPayload builds the Patch/Unpatch payload: input, output, and mask
// universe numbers, each little-endian uint16.
func PatchPayload(p Patch) []byte {
	payload := make([]byte, 0, 6)
	payload = binary.LittleEndian.AppendUint16(payload, p.InputUniverse)
	payload = binary.LittleEndian.AppendUint16(payload, p.OutputUniverse)
	payload = binary.LittleEndian.AppendUint16(payload, p.MaskUniverse)
	return payload
}

// CopyUniversePayload builds the CopyUniverse payload: source then
// destination universe numbers.
func CopyUniversePayload(src, dst uint16) []byte {
	payload := make([]byte, 0, 4)
	payload = binary.LittleEndian.AppendUint16(payload, src)
	payload = binary.LittleEndian.AppendUint16(payload, dst)
	return payload
}

// AddressesToValuePayload builds the SetAddressesToValue payload: universe
// number, the value, then the 64-byte packed mask of addresses to set.
func AddressesToValuePayload(universe uint16, value byte, mask ChannelMask) []byte {
	payload := make([]byte, 3+MaskBytes)
	binary.LittleEndian.PutUint16(payload[0:2], universe)
	payload[2] = value
	// Cannot fail: the buffer has exactly MaskBytes of room at offset 3.
	_ = mask.Encode(payload, 3, MaskBytes)
	return payload
}

// PortQuerySelector is the payload marker distinguishing a port-list query
// from the other operations sharing OpQuery.
var PortQuerySelector = []byte{0xFF, 0xFF}

// ValuesByAddressPayload builds the values-by-address query payload: a
// 2-byte count then count x (universe16 + address16) address packs.
func ValuesByAddressPayload(addrs []Address) []byte {
	payload := make([]byte, 0, 2+len(addrs)*4)
	payload = binary.LittleEndian.AppendUint16(payload, uint16(len(addrs)))
	for _, a := range addrs {
		payload = binary.LittleEndian.AppendUint16(payload, a.Universe)
		payload = binary.LittleEndian.AppendUint16(payload, a.Address)
	}
	return payload
}

// MaskValuesByAddressPayload builds the mask-values-by-address query
// payload: the mask universe, a 2-byte count, then count x address16.
func MaskValuesByAddressPayload(universe uint16, addrs []uint16) []byte {
	payload := make([]byte, 0, 4+len(addrs)*2)
	payload = binary.LittleEndian.AppendUint16(payload, universe)
	payload = binary.LittleEndian.AppendUint16(payload, uint16(len(addrs)))
	for _, a := range addrs {
		payload = binary.LittleEndian.AppendUint16(payload, a)
	}
	return payload
}
