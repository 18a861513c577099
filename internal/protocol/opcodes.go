package protocol

import "fmt"

// Protocol constants
const (
	// HeaderSize is the fixed outbound header length: reserved byte +
	// opcode (LE uint16) + payload length (LE uint16).
	HeaderSize = 5

	// UniverseSize is the number of one-byte channel values per universe.
	UniverseSize = 512

	// MaskBytes is the wire size of a packed channel mask (512 bits).
	MaskBytes = 64
)

// Operation opcodes (little-endian uint16 on the wire)
const (
	OpIdentify             uint16 = 0x0001
	OpSetUniverseData      uint16 = 0x0002
	OpSetAddressValues     uint16 = 0x0003
	OpGetUniverseData      uint16 = 0x0004
	OpSetFramerate         uint16 = 0x0005
	OpGetFramerate         uint16 = 0x0006
	OpCreateMaskUniverse   uint16 = 0x0007
	OpGetMaskUniverses     uint16 = 0x0008
	OpDeleteMaskUniverse   uint16 = 0x0009
	OpSetMaskUniverseData  uint16 = 0x000A
	OpSetMaskAddressValues uint16 = 0x000B
	OpGetMaskUniverseData  uint16 = 0x000C
	OpClearMaskUniverse    uint16 = 0x000D
	OpPatch                uint16 = 0x000E
	OpUnpatch              uint16 = 0x000F

	// OpQuery is shared by several read operations (list patches, list
	// ports, values by address, mask values by address); the request
	// payload disambiguates them on the device side.
	OpQuery uint16 = 0x0010

	OpCopyUniverse       uint16 = 0x0011
	OpSetAddressesToValue uint16 = 0x0012
)

// OpcodeName returns a human-readable name for an opcode
func OpcodeName(opcode uint16) string {
	switch opcode {
	case OpIdentify:
		return "Identify"
	case OpSetUniverseData:
		return "SetUniverseData"
	case OpSetAddressValues:
		return "SetAddressValues"
	case OpGetUniverseData:
		return "GetUniverseData"
	case OpSetFramerate:
		return "SetFramerate"
	case OpGetFramerate:
		return "GetFramerate"
	case OpCreateMaskUniverse:
		return "CreateMaskUniverse"
	case OpGetMaskUniverses:
		return "GetMaskUniverses"
	case OpDeleteMaskUniverse:
		return "DeleteMaskUniverse"
	case OpSetMaskUniverseData:
		return "SetMaskUniverseData"
	case OpSetMaskAddressValues:
		return "SetMaskAddressValues"
	case OpGetMaskUniverseData:
		return "GetMaskUniverseData"
	case OpClearMaskUniverse:
		return "ClearMaskUniverse"
	case OpPatch:
		return "Patch"
	case OpUnpatch:
		return "Unpatch"
	case OpQuery:
		return "Query"
	case OpCopyUniverse:
		return "CopyUniverse"
	case OpSetAddressesToValue:
		return "SetAddressesToValue"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", opcode)
	}
}

// PortMode is the direction of a physical gateway port
type PortMode uint8

const (
	PortModeOutput PortMode = 0
	PortModeInput  PortMode = 1
)

// String returns a human-readable port mode name
func (m PortMode) String() string {
	switch m {
	case PortModeOutput:
		return "output"
	case PortModeInput:
		return "input"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Address identifies one channel inside one universe
type Address struct {
	Universe uint16
	Address  uint16
}

// AddressValue is an Address plus the one-byte value to write there
type AddressValue struct {
	Universe uint16
	Address  uint16
	Value    byte
}

// MaskAddressValue is a per-address write within a mask universe: the
// address, its masking flag, and the channel value.
type MaskAddressValue struct {
	Address uint16
	Masking byte
	Value   byte
}

// MaskValue is one element of a mask-values-by-address response
type MaskValue struct {
	Masking byte
	Value   byte
}

// Patch describes how one universe's output is derived: channel data from
// InputUniverse, optionally gated by MaskUniverse, feeding OutputUniverse.
type Patch struct {
	InputUniverse  uint16
	OutputUniverse uint16
	MaskUniverse   uint16
}

// String returns a debug representation of the patch
func (p Patch) String() string {
	return fmt.Sprintf("Patch{in=%d, out=%d, mask=%d}", p.InputUniverse, p.OutputUniverse, p.MaskUniverse)
}

// Port is one physical or logical port binding on the gateway
type Port struct {
	Universe uint16
	Mode     PortMode
}

// String returns a debug representation of the port
func (p Port) String() string {
	return fmt.Sprintf("Port{universe=%d, mode=%s}", p.Universe, p.Mode)
}
