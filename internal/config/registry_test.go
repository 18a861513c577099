package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewRegistryDefaults(t *testing.T) {
	r := NewRegistry()

	if r.Version != 1 {
		t.Errorf("Version = %d, want 1", r.Version)
	}
	if r.Gateways == nil {
		t.Error("Gateways map not initialized")
	}
	if r.Preferences == nil {
		t.Fatal("Preferences not initialized")
	}
	if !r.Preferences.AutoDiscover {
		t.Error("AutoDiscover should default to true")
	}
	if r.Preferences.ScanTimeout != 5 {
		t.Errorf("ScanTimeout = %d, want 5", r.Preferences.ScanTimeout)
	}
}

func TestLoadRegistryFromFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		verify  func(t *testing.T, r *Registry)
	}{
		{
			name: "full config",
			content: `version: 1
default_endpoint: /dev/ttyUSB0
gateways:
  /dev/ttyUSB0:
    nickname: main rig
    model: DL-4
    firmware: 1.4.2
preferences:
  auto_discover: false
  scan_timeout: 3
  connect_budget_ms: 1500
  operation_budget_ms: 750
bridge:
  interface: eth0
  universes:
    - sacn: 1
      gateway: 0
    - sacn: 2
      gateway: 1
`,
			verify: func(t *testing.T, r *Registry) {
				if r.DefaultEndpoint != "/dev/ttyUSB0" {
					t.Errorf("DefaultEndpoint = %q", r.DefaultEndpoint)
				}
				gw := r.GetGateway("/dev/ttyUSB0")
				if gw == nil {
					t.Fatal("gateway entry missing")
				}
				if gw.Nickname != "main rig" || gw.Model != "DL-4" || gw.Firmware != "1.4.2" {
					t.Errorf("unexpected gateway entry: %+v", gw)
				}
				if r.Preferences.AutoDiscover {
					t.Error("AutoDiscover should be false")
				}
				if got := r.Preferences.ConnectBudget(); got != 1500*time.Millisecond {
					t.Errorf("ConnectBudget() = %v", got)
				}
				if got := r.Preferences.OperationBudget(); got != 750*time.Millisecond {
					t.Errorf("OperationBudget() = %v", got)
				}
				if r.Bridge == nil || r.Bridge.Interface != "eth0" {
					t.Fatalf("unexpected bridge config: %+v", r.Bridge)
				}
				if target, ok := r.Bridge.MappingFor(2); !ok || target != 1 {
					t.Errorf("MappingFor(2) = %d, %v", target, ok)
				}
				if _, ok := r.Bridge.MappingFor(9); ok {
					t.Error("MappingFor(9) should not match")
				}
			},
		},
		{
			name:    "minimal config gets defaults",
			content: "version: 1\n",
			verify: func(t *testing.T, r *Registry) {
				if r.Gateways == nil {
					t.Error("Gateways map not initialized")
				}
				if r.Preferences == nil || !r.Preferences.AutoDiscover {
					t.Error("default preferences not applied")
				}
				if r.Preferences.ConnectBudget() != 0 {
					t.Error("unset budgets should be zero")
				}
			},
		},
		{
			name:    "unsupported version",
			content: "version: 2\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			content: "version: [1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			r, err := LoadRegistryFromFile(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadRegistryFromFile failed: %v", err)
			}
			tt.verify(t, r)
		})
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	r, err := LoadRegistryFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should yield default registry, got %v", err)
	}
	if r.Version != 1 {
		t.Errorf("Version = %d, want 1", r.Version)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	r := NewRegistry()
	r.DefaultEndpoint = "ws://192.168.1.40:9090"
	r.RecordIdentify("ws://192.168.1.40:9090", "DL-8", "2.0.1")
	r.SetGatewayNickname("ws://192.168.1.40:9090", "FOH rack")
	r.Bridge = &BridgeConfig{
		Universes: []BridgeMapping{{SACN: 1, Gateway: 0}},
	}

	if err := r.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadRegistryFromFile(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if loaded.DefaultEndpoint != r.DefaultEndpoint {
		t.Errorf("DefaultEndpoint = %q", loaded.DefaultEndpoint)
	}
	gw := loaded.GetGateway("ws://192.168.1.40:9090")
	if gw == nil {
		t.Fatal("gateway entry missing after reload")
	}
	if gw.Nickname != "FOH rack" || gw.Model != "DL-8" || gw.Firmware != "2.0.1" {
		t.Errorf("unexpected gateway entry: %+v", gw)
	}
	if gw.LastSeen.IsZero() {
		t.Error("LastSeen not preserved")
	}
	if target, ok := loaded.Bridge.MappingFor(1); !ok || target != 0 {
		t.Errorf("MappingFor(1) = %d, %v", target, ok)
	}
}

func TestEnsureGateway(t *testing.T) {
	r := &Registry{Version: 1}

	gw := r.EnsureGateway("/dev/ttyACM0")
	if gw == nil {
		t.Fatal("EnsureGateway returned nil")
	}

	gw.Nickname = "test"
	if again := r.EnsureGateway("/dev/ttyACM0"); again != gw {
		t.Error("EnsureGateway should return the existing entry")
	}
}
