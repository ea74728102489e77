package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined metadata for known sensors and application
// preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Sensors     map[string]*Sensor `yaml:"sensors,omitempty"` // Keyed by serial port path
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Sensor represents user-defined metadata for a single sensor.
// This is keyed by the serial port path in the Registry.
type Sensor struct {
	Nickname string    `yaml:"nickname,omitempty"` // User-friendly name
	Baud     int       `yaml:"baud,omitempty"`     // Port baud rate override
	Firmware string    `yaml:"firmware,omitempty"` // Last reported firmware version
	LastSeen time.Time `yaml:"last_seen,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultPort string `yaml:"default_port,omitempty"` // Port used when none is given
	DefaultBaud int    `yaml:"default_baud"`           // Baud used when the sensor has no override
	MonitorAddr string `yaml:"monitor_addr,omitempty"` // Default websocket republish address
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Sensors: make(map[string]*Sensor),
		Preferences: &Preferences{
			DefaultBaud: 115200,
		},
	}
}

// GetSensor retrieves sensor metadata by port path.
// Returns nil if the sensor doesn't exist in the registry.
func (r *Registry) GetSensor(port string) *Sensor {
	return r.Sensors[port]
}

// EnsureSensor ensures a sensor entry exists in the registry.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureSensor(port string) *Sensor {
	if r.Sensors == nil {
		r.Sensors = make(map[string]*Sensor)
	}

	if sensor, exists := r.Sensors[port]; exists {
		return sensor
	}

	sensor := &Sensor{}
	r.Sensors[port] = sensor
	return sensor
}

// UpdateSensorLastSeen records a successful session on a port.
func (r *Registry) UpdateSensorLastSeen(port string) {
	sensor := r.EnsureSensor(port)
	sensor.LastSeen = time.Now()
}

// SetSensorNickname sets a user-friendly nickname for a sensor.
func (r *Registry) SetSensorNickname(port, nickname string) {
	sensor := r.EnsureSensor(port)
	sensor.Nickname = nickname
}

// SetSensorFirmware records the firmware version a sensor reported.
func (r *Registry) SetSensorFirmware(port, version string) {
	sensor := r.EnsureSensor(port)
	sensor.Firmware = version
	sensor.LastSeen = time.Now()
}

// BaudFor returns the baud rate to use for a port: the sensor's
// override if present, otherwise the default preference.
func (r *Registry) BaudFor(port string) int {
	if sensor := r.GetSensor(port); sensor != nil && sensor.Baud > 0 {
		return sensor.Baud
	}
	if r.Preferences != nil && r.Preferences.DefaultBaud > 0 {
		return r.Preferences.DefaultBaud
	}
	return 115200
}
