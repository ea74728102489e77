// Ld2420-cfg is a configuration utility for LD2420 presence sensors.
//
// It provides serial port discovery, sensor identification and direct
// configuration commands over the sensor's UART protocol. Commands that
// talk to the sensor open the protocol's configuration mode, run, and
// close it again before exiting.
//
// Usage:
//
//	ld2420-cfg [command] [flags]
//
// See 'ld2420-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/ld2420/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ld2420-cfg",
	Short: "LD2420 Sensor Configuration Utility",
	Long: `A standalone utility for configuring LD2420 presence sensors.

Provides serial port discovery, sensor identification and direct
configuration commands over the sensor's UART protocol.

Note: For continuous frame monitoring, use the separate 'ld2420-watch'
utility.`,
	Version: version.Version,
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
		fmt.Printf("ld2420-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
