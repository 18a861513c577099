package discovery

import (
	"errors"
	"sync"
	"testing"

	"github.com/lumakit/dmxlink/internal/transport"
)

// identifyEndpoint answers the first write with a canned identify record
type identifyEndpoint struct {
	response []byte

	mu     sync.Mutex
	sent   bool
	ready  chan struct{}
	closed chan struct{}
	once   sync.Once
	cOnce  sync.Once
}

func newIdentifyEndpoint(response string) *identifyEndpoint {
	return &identifyEndpoint{
		response: []byte(response),
		ready:    make(chan struct{}),
		closed:   make(chan struct{}),
	}
}

func (e *identifyEndpoint) Read(p []byte) (int, error) {
	select {
	case <-e.ready:
	case <-e.closed:
		return 0, errors.New("endpoint closed")
	}

	e.mu.Lock()
	if !e.sent {
		e.sent = true
		n := copy(p, e.response)
		e.mu.Unlock()
		return n, nil
	}
	e.mu.Unlock()

	<-e.closed
	return 0, errors.New("endpoint closed")
}

func (e *identifyEndpoint) Write(p []byte) (int, error) {
	e.once.Do(func() { close(e.ready) })
	return len(p), nil
}

func (e *identifyEndpoint) Close() error {
	e.cOnce.Do(func() { close(e.closed) })
	return nil
}

func TestProbeKeepsOnlyAnsweringCandidates(t *testing.T) {
	p := NewProber()
	p.open = func(path string) (transport.Endpoint, error) {
		switch path {
		case "/dev/ttyUSB0":
			return newIdentifyEndpoint(`{"version":"1.4.2","model":"DL-4"}` + "\n\n"), nil
		case "/dev/ttyUSB1":
			return nil, errors.New("permission denied")
		default:
			// Answers, but not with an identify record
			return newIdentifyEndpoint("ERROR unknown command\n\n"), nil
		}
	}

	candidates := []Candidate{
		{Path: "/dev/ttyUSB0", Source: SourceSerial},
		{Path: "/dev/ttyUSB1", Source: SourceSerial},
		{Path: "/dev/ttyUSB2", Source: SourceSerial},
	}

	gateways := p.Probe(candidates)
	if len(gateways) != 1 {
		t.Fatalf("Probe returned %d gateways, want 1", len(gateways))
	}

	gw := gateways[0]
	if gw.Candidate.Path != "/dev/ttyUSB0" {
		t.Errorf("gateway path = %q, want /dev/ttyUSB0", gw.Candidate.Path)
	}
	if gw.Identity.Version != "1.4.2" {
		t.Errorf("gateway version = %q, want 1.4.2", gw.Identity.Version)
	}
	if gw.Identity.Model != "DL-4" {
		t.Errorf("gateway model = %q, want DL-4", gw.Identity.Model)
	}
	if gw.DiscoveredAt.IsZero() {
		t.Error("gateway DiscoveredAt was not set")
	}
}

func TestProbeEmptyCandidateList(t *testing.T) {
	gateways := NewProber().Probe(nil)
	if len(gateways) != 0 {
		t.Errorf("Probe(nil) returned %d gateways, want 0", len(gateways))
	}
}
