// internal/config/normalize.go
package config

import "strings"

// DeviceNameMaxChars matches the status block's device name capacity.
const DeviceNameMaxChars = 16

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// Markers are matched case-insensitively; fold once here.
	for i, m := range cfg.ProfileMarkers {
		cfg.ProfileMarkers[i] = strings.ToLower(strings.TrimSpace(m))
	}

	for i, t := range cfg.ProbeTargets {
		cfg.ProbeTargets[i] = strings.TrimSpace(t)
	}

	cfg.DependentServiceName = strings.TrimSpace(cfg.DependentServiceName)

	// device_name: ASCII already validated, truncate to block capacity.
	if len(cfg.StatusMemory.DeviceName) > DeviceNameMaxChars {
		cfg.StatusMemory.DeviceName = cfg.StatusMemory.DeviceName[:DeviceNameMaxChars]
	}
}
