package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantPath string
	}{
		{
			name: "gateway with IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "dmxlink-a1b2c3.local.",
				Port:     9090,
				AddrIPv4: []net.IP{net.ParseIP("192.168.4.16")},
				Text:     []string{"model=DL-4"},
			},
			wantPath: "ws://192.168.4.16:9090",
		},
		{
			name: "no port advertised defaults to 9090",
			entry: &zeroconf.ServiceEntry{
				HostName: "dmxlink-a1b2c3.local",
				Port:     0,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantPath: "ws://10.0.0.5:9090",
		},
		{
			name: "custom port",
			entry: &zeroconf.ServiceEntry{
				HostName: "dmxlink-ffeedd.local",
				Port:     8081,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.100")},
			},
			wantPath: "ws://192.168.1.100:8081",
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				HostName: "dmxlink-a1b2c3.local",
				Port:     9090,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantPath: "ws://[fe80::1]:9090",
		},
		{
			name: "IPv4 preferred over IPv6",
			entry: &zeroconf.ServiceEntry{
				HostName: "dmxlink-a1b2c3.local",
				Port:     9090,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6: []net.IP{net.ParseIP("fe80::2")},
			},
			wantPath: "ws://192.168.1.50:9090",
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				HostName: "dmxlink-a1b2c3.local",
				Port:     9090,
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if c != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", c)
				}
				return
			}
			if c == nil {
				t.Fatal("parseServiceEntry() = nil, want candidate")
			}

			if c.Path != tt.wantPath {
				t.Errorf("candidate.Path = %q, want %q", c.Path, tt.wantPath)
			}
			if c.Source != SourceMDNS {
				t.Errorf("candidate.Source = %q, want %q", c.Source, SourceMDNS)
			}
			if c.Hostname != tt.entry.HostName {
				t.Errorf("candidate.Hostname = %q, want %q", c.Hostname, tt.entry.HostName)
			}
		})
	}
}

func TestParseServiceEntryMetadata(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "dmxlink-a1b2c3.local",
		Port:     9090,
		AddrIPv4: []net.IP{net.ParseIP("192.168.4.16")},
		Text:     []string{"model=DL-4", "version=1.4.2", "flag"},
	}

	c := parseServiceEntry(entry)
	if c == nil {
		t.Fatal("parseServiceEntry() = nil, want candidate")
	}

	expected := map[string]string{
		"model":   "DL-4",
		"version": "1.4.2",
		"flag":    "", // key without value
	}

	if len(c.Metadata) != len(expected) {
		t.Errorf("candidate.Metadata has %d entries, want %d", len(c.Metadata), len(expected))
	}
	for key, want := range expected {
		if got, ok := c.Metadata[key]; !ok {
			t.Errorf("candidate.Metadata missing key %q", key)
		} else if got != want {
			t.Errorf("candidate.Metadata[%q] = %q, want %q", key, got, want)
		}
	}

	if c.GetMetadata("model") != "DL-4" {
		t.Errorf("GetMetadata(model) = %q, want DL-4", c.GetMetadata("model"))
	}
	if c.GetMetadata("missing") != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", c.GetMetadata("missing"))
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}
