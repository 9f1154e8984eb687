// internal/supervisor/recover.go
package supervisor

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recover runs one full recovery sequence synchronously:
// stack restart, up to MaxRetry profile cycles, then escalation.
// It returns early, without escalating, if ctx is cancelled.
func (s *Supervisor) recover(ctx context.Context) {
	s.outage = uuid.NewString()
	defer func() { s.outage = "" }()

	log := s.log.With(zap.String("outage", s.outage))
	s.transition(Recovering, "probe down")

	// The stack restart is unconditional, even before any profile is tried.
	err := s.profiles.RestartStack(ctx)
	if ctx.Err() != nil {
		return
	}
	s.emit(Event{Kind: EventStackRestart, Err: err})
	if err != nil {
		log.Warn("network stack restart failed", zap.Error(err))
	} else {
		log.Info("network stack restarted")
	}
	if sleep(ctx, s.cfg.RestartSettle) != nil {
		return
	}

	var attempts []Attempt
	defer func() { s.logAttempts(log, attempts) }()

	for cycle := 1; cycle <= s.cfg.MaxRetry; cycle++ {
		s.state.Cycles++
		s.emit(Event{Kind: EventCycle})
		log.Info("recovery cycle",
			zap.Int("cycle", cycle),
			zap.Int("max_retry", s.cfg.MaxRetry),
			zap.Int("consecutive_cycles", s.state.Cycles),
		)

		for _, name := range s.candidates(ctx, log) {
			a := s.attempt(ctx, log, cycle, name)
			if ctx.Err() != nil {
				return
			}
			attempts = append(attempts, a)

			if a.Restored {
				log.Info("reachability restored",
					zap.String("profile", name),
					zap.Int("cycle", cycle),
				)
				s.state.Cycles = 0
				s.transition(Monitoring, "profile "+name+" restored reachability")
				return
			}
		}

		if sleep(ctx, s.cfg.CheckInterval) != nil {
			return
		}
	}

	s.escalate(ctx, log)
}

// candidates fetches the profile list for one cycle and filters it.
// A listing failure yields an empty cycle, not an aborted recovery.
func (s *Supervisor) candidates(ctx context.Context, log *zap.Logger) []string {
	names, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("profile listing failed", zap.Error(err))
		}
		return nil
	}

	c := Candidates(names, s.cfg.Markers)
	if len(c) == 0 {
		log.Info("no candidate profiles",
			zap.Int("listed", len(names)),
			zap.Strings("markers", s.cfg.Markers),
		)
	} else {
		log.Debug("candidate profiles", zap.Strings("profiles", c))
	}
	return c
}

// attempt activates one profile, waits for it to settle and probes.
// A failed activation skips the settle and probe: it cannot have restored anything.
func (s *Supervisor) attempt(ctx context.Context, log *zap.Logger, cycle int, name string) Attempt {
	a := Attempt{Profile: name, Cycle: cycle, At: s.now()}

	log.Info("activating profile", zap.String("profile", name), zap.Int("cycle", cycle))

	if err := s.profiles.Activate(ctx, name); err != nil {
		a.Err = err
		if ctx.Err() != nil {
			return a
		}
		log.Warn("profile activation failed", zap.String("profile", name), zap.Error(err))
		s.emit(Event{Kind: EventActivation, Profile: name, Err: err})
		return a
	}

	if sleep(ctx, s.cfg.ActivateSettle) != nil {
		return a
	}

	a.Restored = s.probe(ctx)
	if ctx.Err() != nil {
		return a
	}
	if !a.Restored {
		log.Info("profile activated, still unreachable", zap.String("profile", name))
	}
	s.emit(Event{Kind: EventActivation, Profile: name, Up: a.Restored})
	return a
}

// escalate is the last resort after MaxRetry failed cycles.
// The service restart is fire-and-forget: its effect is never verified.
func (s *Supervisor) escalate(ctx context.Context, log *zap.Logger) {
	s.transition(Escalating, "recovery cycles exhausted")

	// Reachability may have come back on its own during the last pause.
	if s.probe(ctx) {
		log.Info("reachability returned before escalation")
		s.state.Cycles = 0
		s.transition(Monitoring, "reachable before escalation")
		return
	}
	if ctx.Err() != nil {
		return
	}

	err := s.services.Restart(ctx, s.cfg.Service)
	if ctx.Err() != nil {
		return
	}
	s.emit(Event{Kind: EventEscalation, Err: err})
	if err != nil {
		log.Warn("dependent service restart failed", zap.String("service", s.cfg.Service), zap.Error(err))
	} else {
		log.Warn("dependent service restarted", zap.String("service", s.cfg.Service))
	}

	s.transition(Monitoring, "escalation issued")
}

// logAttempts writes the sequence summary; the attempts are discarded afterwards.
func (s *Supervisor) logAttempts(log *zap.Logger, attempts []Attempt) {
	if len(attempts) == 0 {
		log.Info("recovery sequence finished", zap.Int("attempts", 0))
		return
	}

	tried := make([]string, 0, len(attempts))
	failed := 0
	restored := ""
	for _, a := range attempts {
		tried = append(tried, a.Profile)
		if a.Err != nil {
			failed++
		}
		if a.Restored {
			restored = a.Profile
		}
	}
	log.Info("recovery sequence finished",
		zap.Int("attempts", len(attempts)),
		zap.Int("activation_failures", failed),
		zap.Strings("profiles_tried", tried),
		zap.String("restored_by", restored),
	)
}
