// Package config manages persistent user configuration.
//
// The registry lives in the OS-appropriate config directory
// (~/.config/ld2420/config.yaml on Linux) and stores per-sensor
// metadata keyed by serial port path, plus application preferences.
// The sensor itself holds no client-side state; everything here is
// purely local bookkeeping.
//
// Saves are atomic: the file is written to a temporary path and
// renamed into place.
package config
