// internal/config/load.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "LINKWATCH_"

// DefaultLogPath is the rotating log file. An explicit empty log.path disables it.
const DefaultLogPath = "/var/log/linkwatch/linkwatch.log"

// Default returns the built-in configuration.
// dependent_service_name has no default on purpose: it must be bound explicitly.
func Default() *Config {
	return &Config{
		CheckInterval:    30,
		MaxRetry:         3,
		ProfileMarkers:   []string{"tethering", "wifi"},
		ProbeTargets:     []string{"8.8.8.8", "1.1.1.1"},
		CommandTimeoutS:  30,
		ShutdownTimeoutS: 5,
		Probe: ProbeConfig{
			Method:   "ping",
			Count:    2,
			TimeoutS: 3,
		},
		Settle: SettleConfig{
			RestartS:  5,
			ActivateS: 5,
		},
		Network: NetworkConfig{
			StackService: "NetworkManager",
		},
		Log: LogConfig{
			Path:       DefaultLogPath,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Control: ControlConfig{
			Socket: "/run/linkwatch.sock",
		},
		StatusMemory: StatusMemoryConfig{
			UnitID:     1,
			TimeoutMs:  1000,
			DeviceName: "linkwatch",
		},
	}
}

// Load builds the effective configuration.
//
// Precedence (lowest first): defaults, YAML file, env file, process environment.
// An empty path skips the YAML file. A missing env file is not an error.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decodeYAML(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if envFile != "" {
		// godotenv.Load never overrides variables already present in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: env file %s: %w", envFile, err)
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decodeYAML(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overlays LINKWATCH_* variables onto cfg.
// lookup is os.LookupEnv in production and a map in tests.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	intVar := func(name, field string, dst *int) {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, &FieldError{Field: field, Msg: fmt.Sprintf("%s%s=%q is not an integer", EnvPrefix, name, v)})
			return
		}
		*dst = n
	}
	listVar := func(name string, dst *[]string) {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return
		}
		*dst = splitList(v)
	}
	strVar := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	intVar("CHECK_INTERVAL", "check_interval", &cfg.CheckInterval)
	intVar("MAX_RETRY", "max_retry", &cfg.MaxRetry)
	listVar("PROFILE_MARKERS", &cfg.ProfileMarkers)
	listVar("PROBE_TARGETS", &cfg.ProbeTargets)
	strVar("DEPENDENT_SERVICE", &cfg.DependentServiceName)
	strVar("PROBE_METHOD", &cfg.Probe.Method)
	strVar("LOG_PATH", &cfg.Log.Path)
	strVar("LOG_LEVEL", &cfg.Log.Level)
	strVar("METRICS_LISTEN", &cfg.Metrics.Listen)
	strVar("CONTROL_SOCKET", &cfg.Control.Socket)
	strVar("STATUS_ENDPOINT", &cfg.StatusMemory.Endpoint)

	return errors.Join(errs...)
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Marshal renders cfg as YAML (used by check-config).
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
