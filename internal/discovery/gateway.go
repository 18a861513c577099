package discovery

import (
	"fmt"
	"time"

	"github.com/lumakit/dmxlink/internal/protocol"
)

// Source identifies how a candidate endpoint was found
type Source string

const (
	// SourceSerial marks candidates found by enumerating serial ports
	SourceSerial Source = "serial"
	// SourceMDNS marks candidates found by browsing the network
	SourceMDNS Source = "mdns"
)

// Candidate is an endpoint that may host a gateway. Candidates come from
// serial port enumeration or mDNS browsing and are confirmed by probing.
type Candidate struct {
	// Path is the endpoint path to connect to (serial device path or
	// "ws://host:port" URL)
	Path string

	// Source is how this candidate was found
	Source Source

	// Hostname is the mDNS hostname for network candidates (e.g.,
	// "dmxlink-a1b2c3.local.")
	Hostname string

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string
}

// String returns a human-readable string representation of the candidate
func (c *Candidate) String() string {
	if c.Hostname != "" {
		return fmt.Sprintf("%s (%s, %s)", c.Path, c.Hostname, c.Source)
	}
	return fmt.Sprintf("%s (%s)", c.Path, c.Source)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if
// not found
func (c *Candidate) GetMetadata(key string) string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata[key]
}

// Gateway is a candidate that answered the identify handshake
type Gateway struct {
	// Candidate is the endpoint the gateway was probed at
	Candidate Candidate

	// Identity is the metadata the gateway reported
	Identity *protocol.Identity

	// DiscoveredAt is when the gateway was confirmed
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the gateway
func (g *Gateway) String() string {
	name := g.Identity.Name
	if name == "" {
		name = g.Identity.Model
	}
	if name == "" {
		name = "DMX gateway"
	}
	return fmt.Sprintf("%s (v%s) at %s", name, g.Identity.Version, g.Candidate.Path)
}
