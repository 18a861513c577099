package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumakit/dmxlink/internal/bridge"
	"github.com/lumakit/dmxlink/internal/config"
	"github.com/lumakit/dmxlink/internal/device"
	"github.com/lumakit/dmxlink/internal/discovery"
	"github.com/lumakit/dmxlink/internal/protocol"
	"github.com/lumakit/dmxlink/internal/tui"
)

// Command flags
var (
	endpointFlag string
	scanTimeout  int
	maskUniverse int
	bridgeMaps   []string
	bridgeIface  string
)

func init() {
	// Persistent flags shared by all gateway commands
	rootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "Gateway endpoint (serial path or ws://host:port; skips discovery)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(getUniverseCmd)
	rootCmd.AddCommand(setUniverseCmd)
	rootCmd.AddCommand(setChannelCmd)
	rootCmd.AddCommand(getFramerateCmd)
	rootCmd.AddCommand(setFramerateCmd)
	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(unpatchCmd)
	rootCmd.AddCommand(patchesCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(monitorCmd)
}

// scanCmd discovers gateways on serial ports and the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for DMX gateways",
	Long: `Scan for Lumakit DMX gateways.

Every local serial port is probed with the identify handshake, and the
local network is browsed for gateways advertising the _dmxlink._tcp
service. Only endpoints that answer the handshake are listed.`,
	Example: `  # Scan serial ports and the network
  dmxlink-cfg scan

  # Longer mDNS browse for slow networks
  dmxlink-cfg scan --timeout 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "mDNS browse timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for DMX gateways (timeout: %ds)...\n\n", scanTimeout)

	gateways, err := discovery.Scan(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(gateways) == 0 {
		fmt.Println("No gateways found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the gateway is powered on and its cable is connected")
		fmt.Println("  - Check that no other program holds the serial port open")
		fmt.Println("  - For networked gateways, verify mDNS (UDP 5353) is not blocked")
		fmt.Println("  - Use --endpoint to specify the port or URL manually")
		return nil
	}

	fmt.Printf("Found %d gateway(s):\n\n", len(gateways))
	for i, gw := range gateways {
		fmt.Printf("%d. %s\n", i+1, gw.Candidate.Path)
		fmt.Printf("   Firmware: %s\n", gw.Identity.Version)
		if gw.Identity.Model != "" {
			fmt.Printf("   Model:    %s\n", gw.Identity.Model)
		}
		if gw.Identity.Name != "" {
			fmt.Printf("   Name:     %s\n", gw.Identity.Name)
		}
		fmt.Println()
	}

	fmt.Println("Use 'dmxlink-cfg identify --endpoint <path>' to inspect a gateway")
	return nil
}

// identifyCmd runs the identify handshake and prints the response
var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Show gateway identity and capabilities",
	Example: `  # Identify via discovery
  dmxlink-cfg identify

  # Identify a specific gateway
  dmxlink-cfg identify --endpoint /dev/ttyUSB0
  dmxlink-cfg identify --endpoint ws://192.168.1.40:9090`,
	RunE: runIdentify,
}

func runIdentify(cmd *cobra.Command, args []string) error {
	d, err := connectGateway()
	if err != nil {
		return err
	}
	defer d.Close()

	id := d.Identity()
	fmt.Printf("Gateway at %s\n", d.Path())
	fmt.Printf("  Firmware: %s\n", id.Version)
	if id.Model != "" {
		fmt.Printf("  Model:    %s\n", id.Model)
	}
	if id.Name != "" {
		fmt.Printf("  Name:     %s\n", id.Name)
	}
	for _, p := range id.Ports {
		fmt.Printf("  Port %d:   %s\n", p.Port, p.Mode)
	}
	if len(id.Features) > 0 {
		fmt.Printf("  Features: %s\n", strings.Join(id.Features, ", "))
	}
	return nil
}

// portsCmd lists the gateway's DMX port bindings
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List the gateway's DMX port bindings",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := connectGateway()
		if err != nil {
			return err
		}
		defer d.Close()

		ports, err := d.ListPorts()
		if err != nil {
			return fmt.Errorf("failed to list ports: %w", err)
		}

		if len(ports) == 0 {
			fmt.Println("No port bindings.")
			return nil
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	},
}

// getUniverseCmd prints all channel values of a universe
var getUniverseCmd = &cobra.Command{
	Use:   "get-universe <universe>",
	Short: "Print all 512 channel values of a universe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		universe, err := parseUniverse(args[0])
		if err != nil {
			return err
		}

		d, err := connectGateway()
		if err != nil {
			return err
		}
		defer d.Close()

		values, err := d.GetUniverseData(universe)
		if err != nil {
			return fmt.Errorf("failed to read universe %d: %w", universe, err)
		}

		fmt.Printf("Universe %d:\n", universe)
		printValues(values)
		return nil
	},
}

// setUniverseCmd fills every channel of a universe with one value
var setUniverseCmd = &cobra.Command{
	Use:   "set-universe <universe> <value>",
	Short: "Set every channel of a universe to one value",
	Example: `  # Full on
  dmxlink-cfg set-universe 0 255

  # Blackout
  dmxlink-cfg set-universe 0 0`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		universe, err := parseUniverse(args[0])
		if err != nil {
			return err
		}
		value, err := parseChannelValue(args[1])
		if err != nil {
			return err
		}

		d, err := connectGateway()
		if err != nil {
			return err
		}
		defer d.Close()

		values := make([]byte, protocol.UniverseSize)
		for i := range values {
			values[i] = value
		}
		if err := d.SetUniverseData(universe, values); err != nil {
			return fmt.Errorf("failed to set universe %d: %w", universe, err)
		}

		fmt.Printf("✓ Universe %d set to %d on all channels\n", universe, value)
		return nil
	},
}

// setChannelCmd writes individual channel values
var setChannelCmd = &cobra.Command{
	Use:   "set-channel <universe> <channel=value> [<channel=value>...]",
	Short: "Set individual channel values in a universe",
	Example: `  # Set channel 0 to full
  dmxlink-cfg set-channel 0 0=255

  # Set several channels at once
  dmxlink-cfg set-channel 0 0=255 1=128 5=64`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		universe, err := parseUniverse(args[0])
		if err != nil {
			return err
		}

		pairs := make([]protocol.AddressValue, 0, len(args)-1)
		for _, arg := range args[1:] {
			parts := strings.SplitN(arg, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("invalid assignment %q (use channel=value)", arg)
			}
			channel, err := strconv.ParseUint(parts[0], 10, 16)
			if err != nil || channel >= protocol.UniverseSize {
				return fmt.Errorf("invalid channel %q (0-511)", parts[0])
			}
			value, err := parseChannelValue(parts[1])
			if err != nil {
				return err
			}
			pairs = append(pairs, protocol.AddressValue{
				Universe: universe,
				Address:  uint16(channel),
				Value:    value,
			})
		}

		d, err := connectGateway()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.SetAddressValues(pairs); err != nil {
			return fmt.Errorf("failed to set channels: %w", err)
		}

		fmt.Printf("✓ %d channel(s) updated on universe %d\n", len(pairs), universe)
		return nil
	},
}

// getFramerateCmd reads the gateway's output frame rate
var getFramerateCmd = &cobra.Command{
	Use:   "get-framerate",
	Short: "Show the gateway's DMX output frame rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := connectGateway()
		if err != nil {
			return err
		}
		defer d.Close()

		rate, err := d.GetFramerate()
		if err != nil {
			return fmt.Errorf("failed to read framerate: %w", err)
		}
		fmt.Printf("Framerate: %d Hz\n", rate)
		return nil
	},
}

// setFramerateCmd sets the gateway's output frame rate
var setFramerateCmd = &cobra.Command{
	Use:   "set-framerate <hz>",
	Short: "Set the gateway's DMX output frame rate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return fmt.Errorf("invalid framerate %q (0-255)", args[0])
		}

		d, err := connectGateway()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.SetFramerate(uint8(rate)); err != nil {
			return fmt.Errorf("failed to set framerate: %w", err)
		}
		fmt.Printf("✓ Framerate set to %d Hz\n", rate)
		return nil
	},
}

// patchCmd installs a patch mapping
var patchCmd = &cobra.Command{
	Use:   "patch <input-universe> <output-universe>",
	Short: "Patch an input universe to an output universe",
	Long: `Install a patch so data received on the input universe is routed to
the output universe. With --mask, only channels enabled in the given
mask universe pass through.`,
	Example: `  # Route input 0 to output 1
  dmxlink-cfg patch 0 1

  # Route through mask universe 3
  dmxlink-cfg patch 0 1 --mask 3`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parsePatchArgs(args)
		if err != nil {
			return err
		}

		d, err := connectGateway()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Patch(p); err != nil {
			return fmt.Errorf("failed to patch: %w", err)
		}
		fmt.Printf("✓ Patched %s\n", p)
		return nil
	},
}

// unpatchCmd removes a patch mapping
var unpatchCmd = &cobra.Command{
	Use:   "unpatch <input-universe> <output-universe>",
	Short: "Remove a patch mapping",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parsePatchArgs(args)
		if err != nil {
			return err
		}

		d, err := connectGateway()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Unpatch(p); err != nil {
			return fmt.Errorf("failed to unpatch: %w", err)
		}
		fmt.Printf("✓ Unpatched %s\n", p)
		return nil
	},
}

func init() {
	patchCmd.Flags().IntVar(&maskUniverse, "mask", 0, "Mask universe to filter the patch through")
	unpatchCmd.Flags().IntVar(&maskUniverse, "mask", 0, "Mask universe of the patch to remove")
}

// patchesCmd lists the active patch mappings
var patchesCmd = &cobra.Command{
	Use:   "patches",
	Short: "List active patch mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := connectGateway()
		if err != nil {
			return err
		}
		defer d.Close()

		patches, err := d.ListPatches()
		if err != nil {
			return fmt.Errorf("failed to list patches: %w", err)
		}

		if len(patches) == 0 {
			fmt.Println("No patches.")
			return nil
		}
		for _, p := range patches {
			fmt.Println(p)
		}
		return nil
	},
}

// copyCmd copies one universe to another
var copyCmd = &cobra.Command{
	Use:   "copy <src-universe> <dst-universe>",
	Short: "Copy all channel values from one universe to another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := parseUniverse(args[0])
		if err != nil {
			return err
		}
		dst, err := parseUniverse(args[1])
		if err != nil {
			return err
		}

		d, err := connectGateway()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.CopyUniverse(src, dst); err != nil {
			return fmt.Errorf("failed to copy universe: %w", err)
		}
		fmt.Printf("✓ Copied universe %d to %d\n", src, dst)
		return nil
	},
}

// bridgeCmd forwards sACN data to the gateway until interrupted
var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Forward live sACN (E1.31) data to the gateway",
	Long: `Receive sACN lighting data from the network and forward the mapped
universes to the gateway.

Mappings come from the bridge section of the config file, or from
repeated --map flags in the form sacn:gateway. The bridge runs until
interrupted with Ctrl-C.`,
	Example: `  # Use mappings from the config file
  dmxlink-cfg bridge

  # Forward sACN universe 1 to gateway universe 0
  dmxlink-cfg bridge --map 1:0

  # Several universes on a specific interface
  dmxlink-cfg bridge --map 1:0 --map 2:1 --interface eth0`,
	RunE: runBridge,
}

func init() {
	bridgeCmd.Flags().StringArrayVar(&bridgeMaps, "map", nil, "sACN to gateway universe mapping (sacn:gateway)")
	bridgeCmd.Flags().StringVar(&bridgeIface, "interface", "", "Network interface to receive sACN on")
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, err := bridgeConfig()
	if err != nil {
		return err
	}

	d, err := connectGateway()
	if err != nil {
		return err
	}
	defer d.Close()

	b := bridge.New(d, cfg)
	if err := b.Start(); err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}
	defer b.Stop()

	fmt.Printf("Bridging %d universe(s) to %s. Press Ctrl-C to stop.\n",
		len(cfg.Universes), d.Path())
	for _, m := range cfg.Universes {
		fmt.Printf("  sACN %d -> universe %d\n", m.SACN, m.Gateway)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	fmt.Println("\nStopping bridge...")
	return nil
}

// monitorCmd runs the live universe monitor TUI
var monitorCmd = &cobra.Command{
	Use:   "monitor [universe]",
	Short: "Watch a universe's channel values live",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var universe uint16
		if len(args) == 1 {
			u, err := parseUniverse(args[0])
			if err != nil {
				return err
			}
			universe = u
		}

		d, err := connectGateway()
		if err != nil {
			return err
		}
		defer d.Close()

		return tui.RunMonitor(d, d.Path(), universe)
	},
}

// connectGateway resolves the endpoint, connects, and runs the identify
// handshake. The caller owns the returned device and must Close it.
func connectGateway() (*device.Device, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, err
	}

	endpoint, err := resolveEndpoint(registry)
	if err != nil {
		return nil, err
	}

	d := device.New(endpoint)
	if budget := registry.Preferences.OperationBudget(); budget > 0 {
		d.OperationBudget = budget
	}

	if err := d.Connect(registry.Preferences.ConnectBudget()); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}

	id, err := d.Identify(0)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("gateway at %s did not identify: %w", endpoint, err)
	}

	// Remember the gateway for future runs; losing this is not fatal
	registry.RecordIdentify(endpoint, id.Model, id.Version)
	_ = registry.Save()

	return d, nil
}

// resolveEndpoint picks the endpoint from the flag, the config file, or
// discovery, in that order.
func resolveEndpoint(registry *config.Registry) (string, error) {
	if endpointFlag != "" {
		return endpointFlag, nil
	}
	if registry.DefaultEndpoint != "" {
		return registry.DefaultEndpoint, nil
	}
	if !registry.Preferences.AutoDiscover {
		return "", fmt.Errorf("no endpoint configured. Use --endpoint or set default_endpoint in the config file")
	}

	fmt.Println("No endpoint specified, scanning...")
	gateways, err := discovery.Scan(time.Duration(registry.Preferences.ScanTimeout) * time.Second)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}

	if len(gateways) == 0 {
		return "", fmt.Errorf("no gateways found. Use --endpoint to specify one manually")
	}
	if len(gateways) > 1 {
		fmt.Printf("Found %d gateways:\n", len(gateways))
		for i, gw := range gateways {
			fmt.Printf("%d. %s\n", i+1, gw)
		}
		return "", fmt.Errorf("multiple gateways found. Use --endpoint to specify which one")
	}

	gw := gateways[0]
	fmt.Printf("Found gateway: %s\n\n", gw)
	return gw.Candidate.Path, nil
}

// bridgeConfig builds the bridge configuration from --map flags, falling
// back to the config file.
func bridgeConfig() (*config.BridgeConfig, error) {
	if len(bridgeMaps) == 0 {
		registry, err := config.LoadRegistry()
		if err != nil {
			return nil, err
		}
		if registry.Bridge == nil || len(registry.Bridge.Universes) == 0 {
			return nil, fmt.Errorf("no bridge mappings. Use --map sacn:gateway or configure the bridge section of the config file")
		}
		cfg := *registry.Bridge
		if bridgeIface != "" {
			cfg.Interface = bridgeIface
		}
		return &cfg, nil
	}

	cfg := &config.BridgeConfig{Interface: bridgeIface}
	for _, m := range bridgeMaps {
		parts := strings.SplitN(m, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid mapping %q (use sacn:gateway)", m)
		}
		sacnU, err := strconv.ParseUint(parts[0], 10, 16)
		if err != nil || sacnU == 0 {
			return nil, fmt.Errorf("invalid sACN universe %q (1-63999)", parts[0])
		}
		gwU, err := strconv.ParseUint(parts[1], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid gateway universe %q", parts[1])
		}
		cfg.Universes = append(cfg.Universes, config.BridgeMapping{
			SACN:    uint16(sacnU),
			Gateway: uint16(gwU),
		})
	}
	return cfg, nil
}

func parseUniverse(arg string) (uint16, error) {
	u, err := strconv.ParseUint(arg, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid universe %q", arg)
	}
	return uint16(u), nil
}

func parseChannelValue(arg string) (byte, error) {
	v, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q (0-255)", arg)
	}
	return byte(v), nil
}

func parsePatchArgs(args []string) (protocol.Patch, error) {
	input, err := parseUniverse(args[0])
	if err != nil {
		return protocol.Patch{}, err
	}
	output, err := parseUniverse(args[1])
	if err != nil {
		return protocol.Patch{}, err
	}
	if maskUniverse < 0 || maskUniverse > 0xFFFF {
		return protocol.Patch{}, fmt.Errorf("invalid mask universe %d", maskUniverse)
	}
	return protocol.Patch{
		InputUniverse:  input,
		OutputUniverse: output,
		MaskUniverse:   uint16(maskUniverse),
	}, nil
}

// printValues renders channel values as rows of 16
func printValues(values []byte) {
	for start := 0; start < len(values); start += 16 {
		end := start + 16
		if end > len(values) {
			end = len(values)
		}
		fmt.Printf("%3d:", start)
		for _, v := range values[start:end] {
			fmt.Printf(" %3d", v)
		}
		fmt.Println()
	}
}
