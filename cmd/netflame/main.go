// Netflame is a command-line client for NetFlame-style pellet stove
// controllers.
//
// It locates controllers on the local network (by MAC address or mDNS
// hostname), reads telemetry, alarms and the device clock over the HTTP
// CGI interface, and can follow a stove continuously with the watch
// command.
//
// Usage:
//
//	netflame [command] [flags]
//
// See 'netflame --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/afernandezluc/netflame/internal/logging"
	"github.com/afernandezluc/netflame/internal/version"
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "netflame",
	Short: "NetFlame pellet stove control utility",
	Long: `A command-line client for NetFlame-style pellet stove controllers.

Locates the stove on the local network, reads telemetry, alarms and the
device clock over its HTTP CGI interface, and can follow the stove
continuously with the watch command.

The controller is identified either by a fixed --host or by --mac plus
--subnet, in which case the LAN is swept to find its current IP.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
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
		fmt.Printf("netflame %s\n", version.Full())
	},
}
