package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Identity is the metadata record a gateway returns from the identify
// handshake. Version is the only required field.
type Identity struct {
	// Version is the firmware protocol version (required)
	Version string `json:"version"`

	// Name is the user-assigned device name
	Name string `json:"name,omitempty"`

	// Model is the hardware model string (e.g. "DL-8")
	Model string `json:"model,omitempty"`

	// Ports describes the physical ports, addressed by index
	Ports []PortInfo `json:"ports,omitempty"`

	// Features lists optional capability names the firmware supports
	Features []string `json:"features,omitempty"`
}

// PortInfo is one physical port descriptor from the identify record
type PortInfo struct {
	Port int    `json:"port"`
	Mode string `json:"mode"`
}

// HasFeature reports whether the identify record listed a feature name
func (id *Identity) HasFeature(name string) bool {
	for _, f := range id.Features {
		if f == name {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the identity
func (id *Identity) String() string {
	return fmt.Sprintf("Identity{version=%q, name=%q, model=%q, ports=%d, features=%d}",
		id.Version, id.Name, id.Model, len(id.Ports), len(id.Features))
}

// ParseIdentity decodes an identify handshake payload: a JSON record
// terminated by a double line-break. A malformed record or a record without
// a version field is an error.
func ParseIdentity(data []byte) (*Identity, error) {
	record := bytes.TrimSpace(data)
	if len(record) == 0 {
		return nil, fmt.Errorf("empty identify record")
	}

	var id Identity
	if err := json.Unmarshal(record, &id); err != nil {
		return nil, fmt.Errorf("malformed identify record: %w", err)
	}
	if id.Version == "" {
		return nil, fmt.Errorf("identify record missing version field")
	}
	return &id, nil
}
