package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/lumakit/dmxlink/internal/transport"
)

const (
	// ServiceType is the mDNS service type networked Lumakit gateways
	// advertise
	ServiceType = "_dmxlink._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for mDNS browsing
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the WebSocket port gateways listen on when the mDNS
	// entry does not carry one
	DefaultPort = 9090
)

// Scanner collects candidate endpoints from serial port enumeration and
// mDNS browsing
type Scanner struct {
	// Timeout is the maximum time to wait for mDNS responses
	Timeout time.Duration
}

// NewScanner creates a new scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// SerialCandidates lists the serial ports present on this machine as
// candidates. Every port is a candidate; probing decides which ones host a
// gateway.
func SerialCandidates() ([]Candidate, error) {
	ports, err := transport.ListSerialPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	candidates := make([]Candidate, 0, len(ports))
	for _, port := range ports {
		candidates = append(candidates, Candidate{
			Path:   port,
			Source: SourceSerial,
		})
	}
	return candidates, nil
}

// NetworkCandidates browses the local network for advertised gateways
func (s *Scanner) NetworkCandidates() ([]Candidate, error) {
	return s.NetworkCandidatesWithContext(context.Background())
}

// NetworkCandidatesWithContext browses with a custom context
func (s *Scanner) NetworkCandidatesWithContext(ctx context.Context) ([]Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	candidates := make([]Candidate, 0)
	collected := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		defer close(collected)
		for entry := range entries {
			if c := parseServiceEntry(entry); c != nil {
				candidates = append(candidates, *c)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Browse closes the entries channel when the context completes
	<-ctx.Done()
	<-collected

	return candidates, nil
}

// Candidates returns serial and network candidates combined. A serial
// enumeration failure is fatal; a browse failure only drops the network
// candidates since many hosts have no multicast route.
func (s *Scanner) Candidates() ([]Candidate, error) {
	candidates, err := SerialCandidates()
	if err != nil {
		return nil, err
	}

	network, err := s.NetworkCandidates()
	if err != nil {
		return candidates, nil
	}
	return append(candidates, network...), nil
}

// parseServiceEntry converts a zeroconf service entry to a Candidate.
// Returns nil if the entry carries no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Candidate {
	// Prefer IPv4
	var host string
	for _, addr := range entry.AddrIPv4 {
		host = addr.String()
		break
	}
	if host == "" && len(entry.AddrIPv6) > 0 {
		host = fmt.Sprintf("[%s]", entry.AddrIPv6[0].String())
	}
	if host == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Candidate{
		Path:     fmt.Sprintf("ws://%s:%d", host, port),
		Source:   SourceMDNS,
		Hostname: entry.HostName,
		Metadata: metadata,
	}
}
