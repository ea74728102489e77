package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/ld2420/internal/config"
	"github.com/muurk/ld2420/internal/device"
	"github.com/muurk/ld2420/internal/logging"
	"github.com/muurk/ld2420/internal/monitor"
	"github.com/muurk/ld2420/internal/transport"
	"github.com/muurk/ld2420/internal/ui"
)

// Watch command flags
var (
	portName   string
	baudRate   int
	listenAddr string
	logLevel   string
)

func init() {
	rootCmd.Flags().StringVar(&portName, "port", "", "Serial port the sensor is connected to (e.g., /dev/ttyUSB0)")
	rootCmd.Flags().IntVar(&baudRate, "baud", 0, "Baud rate (default from config, 115200 if unset)")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "Republish frames to WebSocket subscribers on this address (e.g., 127.0.0.1:8480)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; silent if unset)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	port := portName
	if port == "" && registry.Preferences != nil {
		port = registry.Preferences.DefaultPort
	}
	if port == "" {
		return errNoPort()
	}

	baud := baudRate
	if baud == 0 {
		baud = registry.BaudFor(port)
	}

	client, err := device.Dial(port, device.WithBaudRate(baud))
	if err != nil {
		return err
	}
	defer client.Close()

	var mon *monitor.Server
	if listenAddr != "" {
		mon = monitor.New(&monitor.Config{Addr: listenAddr})
		if err := mon.Start(); err != nil {
			return err
		}
	}

	params := [][2]string{
		{"Port", port},
		{"Baud", fmt.Sprintf("%d", baud)},
	}
	if nickname := sensorNickname(registry, port); nickname != "" {
		params = append(params, [2]string{"Sensor", nickname})
	}
	if mon != nil {
		params = append(params, [2]string{"Listen", "ws://" + mon.Addr() + "/frames"})
	}
	fmt.Println(ui.RenderSessionHeader("LD2420 FRAME MONITOR", params))
	fmt.Println()

	registry.UpdateSensorLastSeen(port)
	if err := registry.Save(); err != nil {
		logging.Warn("Failed to save config", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case ev, ok := <-client.Frames():
			if !ok {
				return printStats(client)
			}
			fmt.Println(ui.FormatFrameLine(ev.Received, ev.Frame.CmdEcho, ev.Frame.Status, ev.Frame.Payload))
			if mon != nil {
				mon.Broadcast(ev)
			}
		case <-sigChan:
			fmt.Println()
			return printStats(client)
		}
	}
}

func printStats(client *device.Client) error {
	stats := client.Stats()
	fmt.Println(ui.FormatStats(stats.BytesRead, stats.BytesDropped, stats.FramesDecoded, stats.DecodeErrors))
	return nil
}

func sensorNickname(registry *config.Registry, port string) string {
	if sensor := registry.GetSensor(port); sensor != nil {
		return sensor.Nickname
	}
	return ""
}

// errNoPort builds the no-port error with discovery hints.
func errNoPort() error {
	msg := "no serial port specified (use --port or set default_port in the config)"
	ports, err := transport.ListPorts()
	if err != nil || len(ports) == 0 {
		return fmt.Errorf("%s", msg)
	}
	msg += "\n\nAvailable ports:"
	for _, p := range ports {
		msg += "\n  " + p
	}
	return fmt.Errorf("%s", msg)
}
