// internal/config/config.go
package config

import "time"

type Config struct {
	CheckInterval        int      `yaml:"check_interval" validate:"gt=0"`
	MaxRetry             int      `yaml:"max_retry" validate:"gte=1"`
	ProfileMarkers       []string `yaml:"profile_markers" validate:"min=1,dive,required"`
	ProbeTargets         []string `yaml:"probe_targets" validate:"min=1,dive,required"`
	DependentServiceName string   `yaml:"dependent_service_name" validate:"required"`
	CommandTimeoutS      int      `yaml:"command_timeout_s" validate:"gte=1"`
	ShutdownTimeoutS     int      `yaml:"shutdown_timeout_s" validate:"gte=1"`

	Probe        ProbeConfig        `yaml:"probe"`
	Settle       SettleConfig       `yaml:"settle"`
	Network      NetworkConfig      `yaml:"network"`
	Log          LogConfig          `yaml:"log"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Control      ControlConfig      `yaml:"control"`
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
}

// ---- PROBE ----

type ProbeConfig struct {
	Method   string `yaml:"method" validate:"oneof=ping icmp"`
	Count    int    `yaml:"count" validate:"gte=1"`
	TimeoutS int    `yaml:"timeout_s" validate:"gte=1"`
}

// ---- SETTLE DELAYS ----

type SettleConfig struct {
	RestartS  int `yaml:"restart_s" validate:"gte=0"`
	ActivateS int `yaml:"activate_s" validate:"gte=0"`
}

// ---- NETWORK STACK ----

type NetworkConfig struct {
	StackService string `yaml:"stack_service" validate:"required"`
}

// ---- LOG ----

type LogConfig struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

// ---- OBSERVABILITY SURFACES (all optional) ----

type MetricsConfig struct {
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
}

type ControlConfig struct {
	Socket string `yaml:"socket"`
}

// StatusMemoryConfig enables the Modbus status block export when Endpoint is set.
type StatusMemoryConfig struct {
	Endpoint   string `yaml:"endpoint" validate:"omitempty,hostname_port"`
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	TimeoutMs  int    `yaml:"timeout_ms" validate:"gte=0"`
	DeviceName string `yaml:"device_name"`
}

func (c *Config) CheckIntervalDuration() time.Duration {
	return time.Duration(c.CheckInterval) * time.Second
}

func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutS) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutS) * time.Second
}

func (p ProbeConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutS) * time.Second
}

func (s SettleConfig) Restart() time.Duration {
	return time.Duration(s.RestartS) * time.Second
}

func (s SettleConfig) Activate() time.Duration {
	return time.Duration(s.ActivateS) * time.Second
}

func (m StatusMemoryConfig) Enabled() bool {
	return m.Endpoint != ""
}

func (m StatusMemoryConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutMs) * time.Millisecond
}
