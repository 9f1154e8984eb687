// internal/status/board.go
package status

import (
	"sync"
	"time"

	"github.com/tamzrod/linkwatch/internal/supervisor"
)

// Board keeps the latest Snapshot built from supervisor events.
// Observe runs on the supervisor goroutine; Snapshot may be called from anywhere.
type Board struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewBoard() *Board {
	return &Board{snap: Snapshot{
		Phase:  supervisor.Monitoring.String(),
		Health: HealthUnknown,
	}}
}

// Observe implements supervisor.Observer.
func (b *Board) Observe(e supervisor.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &b.snap
	s.Phase = e.State.Phase.String()
	s.Cycles = e.State.Cycles
	s.Since = e.State.Since
	s.Outage = e.Outage

	switch e.Kind {
	case supervisor.EventProbe:
		s.Probes++
		s.LastProbeUp = e.Up
		s.LastProbeAt = e.At
		if e.Up {
			s.OfflineSince = time.Time{}
		} else if s.OfflineSince.IsZero() {
			s.OfflineSince = e.At
		}
	case supervisor.EventActivation:
		if e.Err == nil {
			s.LastProfile = e.Profile
		}
	case supervisor.EventEscalation:
		s.Escalations++
	}

	s.Health = health(e.State.Phase, s)
}

// Snapshot returns a copy of the current state.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

func health(p supervisor.Phase, s *Snapshot) uint16 {
	switch p {
	case supervisor.Recovering:
		return HealthRecovering
	case supervisor.Escalating:
		return HealthEscalating
	}
	switch {
	case s.Probes == 0:
		return HealthUnknown
	case s.LastProbeUp:
		return HealthOnline
	default:
		return HealthOffline
	}
}
