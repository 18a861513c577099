package config

import "time"

// Registry represents the entire user configuration file.
// It stores client-side metadata about known gateways and application
// preferences; nothing here lives on the gateway itself.
type Registry struct {
	Version         int                 `yaml:"version"`
	DefaultEndpoint string              `yaml:"default_endpoint,omitempty"` // Endpoint used when no --endpoint flag is given
	Gateways        map[string]*Gateway `yaml:"gateways,omitempty"`         // Keyed by endpoint path
	Preferences     *Preferences        `yaml:"preferences,omitempty"`
	Bridge          *BridgeConfig       `yaml:"bridge,omitempty"`
}

// Gateway represents client-side metadata for a single known gateway,
// keyed by its endpoint path in the Registry.
type Gateway struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	Model    string    `yaml:"model,omitempty"`     // Model from the last identify
	Firmware string    `yaml:"firmware,omitempty"`  // Version from the last identify
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last successful identify
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover      bool `yaml:"auto_discover"`                 // Probe for gateways when no endpoint is configured
	ScanTimeout       int  `yaml:"scan_timeout"`                  // mDNS browse timeout in seconds
	ConnectBudgetMS   int  `yaml:"connect_budget_ms,omitempty"`   // Connect budget in milliseconds (0 = library default)
	OperationBudgetMS int  `yaml:"operation_budget_ms,omitempty"` // Per-operation budget in milliseconds (0 = library default)
}

// ConnectBudget returns the configured connect budget, or zero when the
// library default should apply
func (p *Preferences) ConnectBudget() time.Duration {
	return time.Duration(p.ConnectBudgetMS) * time.Millisecond
}

// OperationBudget returns the configured per-operation budget, or zero
// when the library default should apply
func (p *Preferences) OperationBudget() time.Duration {
	return time.Duration(p.OperationBudgetMS) * time.Millisecond
}

// BridgeConfig configures the sACN-to-gateway bridge.
type BridgeConfig struct {
	Interface string          `yaml:"interface,omitempty"` // Network interface to receive sACN on ("" = default)
	Universes []BridgeMapping `yaml:"universes,omitempty"` // sACN universe to gateway universe mappings
}

// BridgeMapping forwards one sACN universe to one gateway universe.
type BridgeMapping struct {
	SACN    uint16 `yaml:"sacn"`    // sACN universe number (1-63999)
	Gateway uint16 `yaml:"gateway"` // Gateway universe number
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:  1,
		Gateways: make(map[string]*Gateway),
		Preferences: &Preferences{
			AutoDiscover: true,
			ScanTimeout:  5,
		},
	}
}

// GetGateway retrieves gateway metadata by endpoint path.
// Returns nil if the gateway doesn't exist in the registry.
func (r *Registry) GetGateway(endpoint string) *Gateway {
	return r.Gateways[endpoint]
}

// EnsureGateway ensures a gateway entry exists for the endpoint, creating
// a default one if needed, and returns it.
func (r *Registry) EnsureGateway(endpoint string) *Gateway {
	if r.Gateways == nil {
		r.Gateways = make(map[string]*Gateway)
	}
	if gw, exists := r.Gateways[endpoint]; exists {
		return gw
	}
	gw := &Gateway{}
	r.Gateways[endpoint] = gw
	return gw
}

// RecordIdentify updates a gateway entry from a successful identify.
func (r *Registry) RecordIdentify(endpoint, model, firmware string) {
	gw := r.EnsureGateway(endpoint)
	gw.Model = model
	gw.Firmware = firmware
	gw.LastSeen = time.Now()
}

// SetGatewayNickname sets a user-friendly nickname for a gateway.
func (r *Registry) SetGatewayNickname(endpoint, nickname string) {
	r.EnsureGateway(endpoint).Nickname = nickname
}

// MappingFor returns the gateway universe an sACN universe forwards to.
func (b *BridgeConfig) MappingFor(sacnUniverse uint16) (uint16, bool) {
	for _, m := range b.Universes {
		if m.SACN == sacnUniverse {
			return m.Gateway, true
		}
	}
	return 0, false
}
