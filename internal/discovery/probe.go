package discovery

import (
	"time"

	"go.uber.org/zap"

	"github.com/lumakit/dmxlink/internal/device"
	"github.com/lumakit/dmxlink/internal/logging"
	"github.com/lumakit/dmxlink/internal/transport"
)

const (
	// DefaultProbeConnectBudget bounds opening one candidate endpoint
	DefaultProbeConnectBudget = 500 * time.Millisecond

	// DefaultProbeIdentifyBudget bounds the identify handshake on one
	// candidate
	DefaultProbeIdentifyBudget = time.Second
)

// Prober confirms candidate endpoints by connecting and running the
// identify handshake. Candidates that fail either step are skipped.
type Prober struct {
	// ConnectBudget is the per-candidate connect budget
	ConnectBudget time.Duration

	// IdentifyBudget is the per-candidate identify budget
	IdentifyBudget time.Duration

	// open overrides the endpoint opener, for tests
	open transport.OpenFunc
}

// NewProber creates a prober with default budgets
func NewProber() *Prober {
	return &Prober{
		ConnectBudget:  DefaultProbeConnectBudget,
		IdentifyBudget: DefaultProbeIdentifyBudget,
	}
}

// Probe tries each candidate in turn and returns the ones that answered
// the identify handshake. Probe failures are logged, not returned; a scan
// over many serial ports is expected to hit unrelated devices.
func (p *Prober) Probe(candidates []Candidate) []*Gateway {
	gateways := make([]*Gateway, 0)
	for _, c := range candidates {
		gw, err := p.probeOne(c)
		if err != nil {
			logging.Debug("Candidate did not answer",
				zap.String("endpoint", c.Path),
				zap.String("source", string(c.Source)),
				zap.Error(err),
			)
			continue
		}
		gateways = append(gateways, gw)
	}
	return gateways
}

func (p *Prober) probeOne(c Candidate) (*Gateway, error) {
	var d *device.Device
	if p.open != nil {
		d = device.NewWithOpener(c.Path, p.open)
	} else {
		d = device.New(c.Path)
	}

	if err := d.Connect(p.ConnectBudget); err != nil {
		return nil, err
	}
	defer d.Close()

	id, err := d.Identify(p.IdentifyBudget)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		Candidate:    c,
		Identity:     id,
		DiscoveredAt: time.Now(),
	}, nil
}

// Scan enumerates candidates and probes them in one call
func Scan(timeout time.Duration) ([]*Gateway, error) {
	scanner := NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}

	candidates, err := scanner.Candidates()
	if err != nil {
		return nil, err
	}
	return NewProber().Probe(candidates), nil
}
