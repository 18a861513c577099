// Dmxlink-cfg is a configuration and monitoring utility for Lumakit DMX
// gateways.
//
// It provides gateway discovery, universe and channel control, patch
// management, an sACN bridge, and a live universe monitor. The tool
// communicates with gateways over a serial port or a WebSocket endpoint.
//
// Usage:
//
//	dmxlink-cfg [command] [flags]
//
// See 'dmxlink-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumakit/dmxlink/internal/logging"
	"github.com/lumakit/dmxlink/internal/version"
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dmxlink-cfg",
	Short: "Lumakit DMX Gateway Utility",
	Long: `A standalone utility for Lumakit DL-series DMX gateways.

Provides gateway discovery, universe and channel control, patch
management, an sACN-to-gateway bridge, and a live universe monitor.
Gateways are reached over a serial port (e.g. /dev/ttyUSB0) or a
WebSocket endpoint (ws://host:port).`,
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = logging.InitializeFromEnv()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dmxlink-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
