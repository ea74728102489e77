// Ld2420-watch streams decoded frames from an LD2420 presence sensor.
//
// It opens the serial port, reassembles frames from the byte stream and
// prints each decoded frame as it arrives. With --listen, decoded
// frames are also republished to WebSocket subscribers as JSON, so
// other tools can watch the same sensor without opening the port.
//
// Usage:
//
//	ld2420-watch --port /dev/ttyUSB0 [flags]
//
// See 'ld2420-watch --help' for available options.
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
	Use:   "ld2420-watch",
	Short: "LD2420 Frame Monitor",
	Long: `Stream decoded frames from an LD2420 presence sensor.

The sensor talks a framed binary protocol over UART. This tool opens
the port, resynchronizes on the frame markers and prints every frame
it decodes. Stream corruption is reported and recovered from without
ending the session.

Note: For sensor configuration commands, use the separate 'ld2420-cfg'
utility.`,
	Version: version.Version,
	RunE:    runWatch,
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
		fmt.Printf("ld2420-watch %s (commit: %s)\n", version.Version, version.Commit)
	},
}
