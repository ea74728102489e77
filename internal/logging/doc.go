// Package logging provides structured logging for the LD2420 tools.
//
// This package wraps zap with convenience functions for the logging
// patterns used throughout the module. The CLI tools are silent by
// default: unless a level is passed to Initialize or set through the
// LD2420_LOG_LEVEL environment variable, the logger is a no-op.
//
// # Log Levels
//
//   - Debug: Protocol tracing (decoded frames, raw TX/RX hex dumps)
//   - Info: Normal operations (sessions opened, subscribers connected)
//   - Warn: Non-fatal issues (stream corruption, dropped subscribers)
//   - Error: Failures (port errors, server startup problems)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Client session started",
//	    zap.String("port", "/dev/ttyUSB0"),
//	    zap.Int("baud", 115200),
//	)
//
// # Specialized Logging
//
// Frame and byte-level helpers for protocol debugging:
//
//	logging.LogFrame(port, frame.CmdEcho, frame.Status, raw)
//	logging.LogStreamError(port, err)
//	logging.LogRawBytes("TX OpenConfigMode", buf)
//
// # Configuration
//
// Initialize logging at command startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying
// zap logger handles synchronization automatically.
package logging
