package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "ld2420") {
		t.Errorf("GetConfigDir() = %v, should contain 'ld2420'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Sensors == nil {
		t.Error("NewRegistry().Sensors should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.DefaultBaud != 115200 {
		t.Errorf("DefaultBaud = %v, want 115200", reg.Preferences.DefaultBaud)
	}
}

func TestRegistryEnsureSensor(t *testing.T) {
	reg := NewRegistry()

	sensor := reg.EnsureSensor("/dev/ttyUSB0")
	if sensor == nil {
		t.Fatal("EnsureSensor() returned nil")
	}

	// Second call returns the same entry
	sensor.Nickname = "hallway"
	again := reg.EnsureSensor("/dev/ttyUSB0")
	if again.Nickname != "hallway" {
		t.Errorf("EnsureSensor() returned a new entry, Nickname = %q", again.Nickname)
	}
}

func TestRegistrySensorMetadata(t *testing.T) {
	reg := NewRegistry()

	reg.SetSensorNickname("/dev/ttyUSB0", "hallway")
	reg.SetSensorFirmware("/dev/ttyUSB0", "v1.5.3")

	sensor := reg.GetSensor("/dev/ttyUSB0")
	if sensor == nil {
		t.Fatal("GetSensor() returned nil")
	}
	if sensor.Nickname != "hallway" {
		t.Errorf("Nickname = %q, want %q", sensor.Nickname, "hallway")
	}
	if sensor.Firmware != "v1.5.3" {
		t.Errorf("Firmware = %q, want %q", sensor.Firmware, "v1.5.3")
	}
	if sensor.LastSeen.IsZero() {
		t.Error("LastSeen not updated by SetSensorFirmware")
	}
	if time.Since(sensor.LastSeen) > time.Minute {
		t.Errorf("LastSeen = %v, too old", sensor.LastSeen)
	}
}

func TestRegistryBaudFor(t *testing.T) {
	reg := NewRegistry()

	if got := reg.BaudFor("/dev/ttyUSB0"); got != 115200 {
		t.Errorf("BaudFor(unknown) = %d, want 115200", got)
	}

	reg.EnsureSensor("/dev/ttyUSB0").Baud = 256000
	if got := reg.BaudFor("/dev/ttyUSB0"); got != 256000 {
		t.Errorf("BaudFor(override) = %d, want 256000", got)
	}

	reg.Preferences.DefaultBaud = 9600
	if got := reg.BaudFor("/dev/ttyUSB1"); got != 9600 {
		t.Errorf("BaudFor(default pref) = %d, want 9600", got)
	}
}

func TestRegistrySaveAndReload(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG_CONFIG_HOME redirection is unix-only")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	reg := NewRegistry()
	reg.SetSensorNickname("/dev/ttyUSB0", "hallway")
	reg.SetSensorFirmware("/dev/ttyUSB0", "v1.5.3")
	reg.Preferences.DefaultPort = "/dev/ttyUSB0"

	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}

	sensor := loaded.GetSensor("/dev/ttyUSB0")
	if sensor == nil {
		t.Fatal("sensor missing after reload")
	}
	if sensor.Nickname != "hallway" {
		t.Errorf("Nickname = %q, want %q", sensor.Nickname, "hallway")
	}
	if sensor.Firmware != "v1.5.3" {
		t.Errorf("Firmware = %q, want %q", sensor.Firmware, "v1.5.3")
	}
	if loaded.Preferences.DefaultPort != "/dev/ttyUSB0" {
		t.Errorf("DefaultPort = %q", loaded.Preferences.DefaultPort)
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG_CONFIG_HOME redirection is unix-only")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	reg, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}
	if reg.Version != 1 {
		t.Errorf("Version = %d, want 1", reg.Version)
	}
	if len(reg.Sensors) != 0 {
		t.Errorf("Sensors = %v, want empty", reg.Sensors)
	}
}
