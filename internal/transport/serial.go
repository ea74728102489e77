package transport

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// DefaultReadTimeout bounds each blocking read on the port so the read
// loop can observe shutdown between chunks.
const DefaultReadTimeout = 100 * time.Millisecond

// OpenPort opens the named serial port configured for the sensor's UART
// framing (8 data bits, no parity, one stop bit). A zero baud falls back
// to the caller's protocol default; passing it explicitly keeps this
// package free of protocol knowledge.
func OpenPort(name string, baud int) (io.ReadWriteCloser, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}

	if err := port.SetReadTimeout(DefaultReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", name, err)
	}

	return port, nil
}

// ListPorts returns the serial port names present on this machine.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return ports, nil
}
