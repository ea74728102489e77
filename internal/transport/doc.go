// Package transport supplies raw bytes to the protocol decoder.
//
// It has two pieces: OpenPort, which configures a serial port for the
// sensor's UART settings via go.bug.st/serial, and Ring, a bounded
// non-blocking byte queue that decouples the port read loop from the
// single goroutine driving the stream decoder. The package performs no
// protocol work; it only moves bytes.
package transport
