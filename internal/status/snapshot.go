// internal/status/snapshot.go
package status

import "time"

// Snapshot is the supervisor's externally visible state.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Phase        string    `json:"phase"`
	Health       uint16    `json:"health"`
	Cycles       int       `json:"consecutive_cycles"`
	Since        time.Time `json:"since"`
	LastProbeUp  bool      `json:"last_probe_up"`
	LastProbeAt  time.Time `json:"last_probe_at,omitzero"`
	OfflineSince time.Time `json:"offline_since,omitzero"`
	Outage       string    `json:"outage,omitempty"`
	LastProfile  string    `json:"last_profile,omitempty"`
	Escalations  int       `json:"escalations"`
	Probes       int       `json:"probes"`
}

// SecondsOffline is how long the link has been unhealthy at now, 0 when online.
func (s Snapshot) SecondsOffline(now time.Time) int {
	if s.OfflineSince.IsZero() || now.Before(s.OfflineSince) {
		return 0
	}
	return int(now.Sub(s.OfflineSince) / time.Second)
}
