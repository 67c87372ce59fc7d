// internal/config/config.go
package config

type Config struct {
	Replicator ReplicatorConfig `yaml:"replicator"`
}

type ReplicatorConfig struct {
	Logging      LoggingConfig      `yaml:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
	Devices      []DeviceConfig     `yaml:"devices"`
}

// ---- AMBIENT ----

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
	File   string `yaml:"file"`   // empty => stdout only

	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxBackups int `yaml:"max_backups"`
	MaxAgeDays int `yaml:"max_age_days"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty => disabled
}

// StatusMemoryConfig names the default endpoint for device health blocks.
// Targets that declare status_unit_id publish health there too.
type StatusMemoryConfig struct {
	Endpoint string `yaml:"endpoint"`
	UnitID   uint8  `yaml:"unit_id"`
	Protocol string `yaml:"protocol"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	ID      string         `yaml:"id"`
	Source  SourceConfig   `yaml:"source"`
	Poll    PollConfig     `yaml:"poll"`
	Targets []TargetConfig `yaml:"targets"`
}

// ---- SOURCE ----

type SourceConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	StaleAfterMs int    `yaml:"stale_after_ms"`

	// Device status block (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`
	DeviceName string  `yaml:"device_name"`
}

// ---- TARGET ----

type TargetConfig struct {
	Endpoint     string `yaml:"endpoint"`
	UnitID       uint8  `yaml:"unit_id"`        // recorder block memory
	Address      uint16 `yaml:"address"`        // recorder block start
	StatusUnitID *uint8 `yaml:"status_unit_id"` // per-target status memory (optional)
	TimeoutMs    int    `yaml:"timeout_ms"`
	Protocol     string `yaml:"protocol"` // modbus (default) | ingest
}

// Register sink protocols.
const (
	ProtocolModbus = "modbus"
	ProtocolIngest = "ingest"
)

// ---- POLL ----

type PollConfig struct {
	IntervalMs int  `yaml:"interval_ms"`
	MaxBurst   int  `yaml:"max_burst"`
	KeepInput  bool `yaml:"keep_input"` // keep raw bytes buffered between polls
}
