package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/ld2420/internal/config"
	"github.com/muurk/ld2420/internal/device"
	"github.com/muurk/ld2420/internal/logging"
	"github.com/muurk/ld2420/internal/transport"
	"github.com/muurk/ld2420/internal/ui"
)

// Configuration command flags
var (
	portName   string
	baudRate   int
	cmdTimeout int
	logLevel   string
)

func init() {
	// Common flags for sensor commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&portName, "port", "", "Serial port the sensor is connected to (e.g., /dev/ttyUSB0)")
	rootCmd.PersistentFlags().IntVar(&baudRate, "baud", 0, "Baud rate (default from config, 115200 if unset)")
	rootCmd.PersistentFlags().IntVar(&cmdTimeout, "timeout", 3, "Per-command timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; silent if unset)")

	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(rebootCmd)
	rootCmd.AddCommand(nicknameCmd)
	rootCmd.AddCommand(showCmd)
}

// portsCmd lists serial ports that may have a sensor attached
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	Long: `List the serial ports present on this machine.

The LD2420 usually appears behind a USB-UART bridge, so look for
ttyUSB or ttyACM devices on Linux and cu.usbserial devices on macOS.`,
	Example: `  # List candidate ports
  ld2420-cfg ports`,
	RunE: runPorts,
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := transport.ListPorts()
	if err != nil {
		return fmt.Errorf("failed to enumerate ports: %w", err)
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Check the USB-UART bridge is plugged in")
		fmt.Println("  - On Linux, verify your user is in the dialout group")
		return nil
	}

	fmt.Printf("Found %d port(s):\n\n", len(ports))
	for i, p := range ports {
		fmt.Printf("%d. %s\n", i+1, p)
	}
	fmt.Println("\nUse 'ld2420-cfg info --port <port>' to identify a sensor")

	return nil
}

// infoCmd identifies the sensor on a port
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show sensor information",
	Long: `Connect to the sensor and read its firmware version.

The version query only works while the protocol's configuration mode is
open, so this command opens it, reads, and closes it again. The
reported firmware version is recorded in the local config registry.`,
	Example: `  # Identify the sensor on a port
  ld2420-cfg info --port /dev/ttyUSB0

  # Identify with protocol tracing enabled
  ld2420-cfg info --port /dev/ttyUSB0 --log-level debug`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, registry, err := connect()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if _, err := client.OpenConfigMode(ctx); err != nil {
		fmt.Println(ui.RenderError("Failed to open config mode", err))
		return err
	}

	firmware, err := client.ReadVersion(ctx)
	if err != nil {
		// Best effort: leave config mode before reporting
		_, _ = client.CloseConfigMode(ctx)
		fmt.Println(ui.RenderError("Failed to read version", err))
		return err
	}

	if _, err := client.CloseConfigMode(ctx); err != nil {
		logging.Warn("Failed to close config mode", zap.Error(err))
	}

	registry.SetSensorFirmware(client.Port(), firmware)
	if err := registry.Save(); err != nil {
		logging.Warn("Failed to save config", zap.Error(err))
	}

	details := [][2]string{
		{"Port", client.Port()},
		{"Firmware", firmware},
	}
	if sensor := registry.GetSensor(client.Port()); sensor != nil && sensor.Nickname != "" {
		details = append(details, [2]string{"Nickname", sensor.Nickname})
	}
	fmt.Println(ui.RenderSuccess("Sensor identified", details))

	return nil
}

// rebootCmd restarts the sensor
var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the sensor",
	Long: `Ask the sensor to restart.

The reboot command is only accepted while configuration mode is open.
The sensor drops the link without acknowledging, so success here means
the command was sent, not that the sensor confirmed it.`,
	Example: `  # Reboot the sensor
  ld2420-cfg reboot --port /dev/ttyUSB0`,
	RunE: runReboot,
}

func runReboot(cmd *cobra.Command, args []string) error {
	client, _, err := connect()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if _, err := client.OpenConfigMode(ctx); err != nil {
		fmt.Println(ui.RenderError("Failed to open config mode", err))
		return err
	}

	if err := client.Reboot(ctx); err != nil {
		fmt.Println(ui.RenderError("Failed to send reboot", err))
		return err
	}

	fmt.Println(ui.RenderSuccess("Reboot sent", [][2]string{
		{"Port", client.Port()},
	}))

	return nil
}

// nicknameCmd labels a sensor in the local registry
var nicknameCmd = &cobra.Command{
	Use:   "nickname <name>",
	Short: "Set a nickname for the sensor on a port",
	Long: `Store a user-friendly name for the sensor attached to a port.

The nickname lives in the local config registry only; nothing is
written to the sensor.`,
	Example: `  # Label the hallway sensor
  ld2420-cfg nickname hallway --port /dev/ttyUSB0`,
	Args: cobra.ExactArgs(1),
	RunE: runNickname,
}

func runNickname(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if portName == "" {
		return fmt.Errorf("--port is required")
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registry.SetSensorNickname(portName, args[0])
	if err := registry.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println(ui.RenderSuccess("Nickname saved", [][2]string{
		{"Port", portName},
		{"Nickname", args[0]},
	}))

	return nil
}

// showCmd prints what the registry knows about a sensor
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored sensor metadata",
	Long: `Display the locally stored metadata for the sensor on a port:
nickname, baud override, last reported firmware and last seen time.`,
	Example: `  # Show stored metadata
  ld2420-cfg show --port /dev/ttyUSB0`,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if portName == "" {
		return fmt.Errorf("--port is required")
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sensor := registry.GetSensor(portName)
	if sensor == nil {
		fmt.Printf("No stored metadata for %s\n", portName)
		fmt.Println("\nUse 'ld2420-cfg info' to identify the sensor, or")
		fmt.Println("'ld2420-cfg nickname' to label it.")
		return nil
	}

	details := [][2]string{{"Port", portName}}
	if sensor.Nickname != "" {
		details = append(details, [2]string{"Nickname", sensor.Nickname})
	}
	if sensor.Baud > 0 {
		details = append(details, [2]string{"Baud", fmt.Sprintf("%d", sensor.Baud)})
	}
	if sensor.Firmware != "" {
		details = append(details, [2]string{"Firmware", sensor.Firmware})
	}
	if !sensor.LastSeen.IsZero() {
		details = append(details, [2]string{"Last seen", sensor.LastSeen.Format(time.RFC3339)})
	}
	fmt.Println(ui.RenderSuccess("Sensor metadata", details))

	return nil
}

// connect initializes logging, resolves the port and dials the sensor.
func connect() (*device.Client, *config.Registry, error) {
	if err := logging.Initialize(logLevel); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	port := portName
	if port == "" && registry.Preferences != nil {
		port = registry.Preferences.DefaultPort
	}
	if port == "" {
		return nil, nil, fmt.Errorf("no serial port specified (use --port, or 'ld2420-cfg ports' to list candidates)")
	}

	baud := baudRate
	if baud == 0 {
		baud = registry.BaudFor(port)
	}

	client, err := device.Dial(port, device.WithBaudRate(baud))
	if err != nil {
		return nil, nil, err
	}
	return client, registry, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(cmdTimeout)*time.Second)
}
