// internal/supervisor/supervisor.go
package supervisor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Config is the supervisor's immutable runtime policy.
type Config struct {
	CheckInterval  time.Duration // polling cadence and pause between recovery cycles
	MaxRetry       int           // recovery cycles before escalation
	Markers        []string      // profile relevance markers
	Targets        []string      // probe targets
	Service        string        // dependent service restarted on escalation
	RestartSettle  time.Duration // wait after restarting the network stack
	ActivateSettle time.Duration // wait after activating a profile
}

// Deps binds the supervisor to its collaborators.
type Deps struct {
	Prober   Prober
	Profiles ProfileManager
	Services ServiceController
	Logger   *zap.Logger
	Observer Observer
	Now      func() time.Time
}

// Supervisor is a sequential watchdog: one goroutine, no internal parallelism.
// Polling pauses while a recovery sequence runs.
type Supervisor struct {
	cfg      Config
	prober   Prober
	profiles ProfileManager
	services ServiceController
	log      *zap.Logger
	obs      Observer
	now      func() time.Time

	state  State
	outage string
}

// New validates the policy and collaborator bindings.
func New(cfg Config, d Deps) (*Supervisor, error) {
	switch {
	case d.Prober == nil:
		return nil, errors.New("supervisor: prober required")
	case d.Profiles == nil:
		return nil, errors.New("supervisor: profile manager required")
	case d.Services == nil:
		return nil, errors.New("supervisor: service controller required")
	case cfg.CheckInterval <= 0:
		return nil, errors.New("supervisor: check interval must be > 0")
	case cfg.MaxRetry < 1:
		return nil, errors.New("supervisor: max retry must be >= 1")
	case len(cfg.Targets) == 0:
		return nil, errors.New("supervisor: at least one probe target required")
	case cfg.Service == "":
		return nil, errors.New("supervisor: dependent service name required")
	}

	s := &Supervisor{
		cfg:      cfg,
		prober:   d.Prober,
		profiles: d.Profiles,
		services: d.Services,
		log:      d.Logger,
		obs:      d.Observer,
		now:      d.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.obs == nil {
		s.obs = Observers()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.state = State{Phase: Monitoring, Since: s.now()}
	return s, nil
}

// State returns the current state. Not safe to call while Run is active;
// concurrent readers should consume Events instead.
func (s *Supervisor) State() State {
	return s.state
}

// Run monitors until ctx is cancelled. Cancellation is a clean stop and returns nil.
func (s *Supervisor) Run(ctx context.Context) error {
	s.log.Info("supervisor started",
		zap.Duration("check_interval", s.cfg.CheckInterval),
		zap.Int("max_retry", s.cfg.MaxRetry),
		zap.Strings("profile_markers", s.cfg.Markers),
		zap.Strings("probe_targets", s.cfg.Targets),
		zap.String("dependent_service", s.cfg.Service),
	)
	s.emit(Event{Kind: EventStart})

	for {
		s.step(ctx)
		if ctx.Err() != nil {
			break
		}
		if err := sleep(ctx, s.cfg.CheckInterval); err != nil {
			break
		}
	}

	s.log.Info("supervisor stopped",
		zap.Stringer("phase", s.state.Phase),
		zap.Int("cycles", s.state.Cycles),
	)
	return nil
}

// step is one MONITORING poll, including any recovery it triggers.
func (s *Supervisor) step(ctx context.Context) {
	up := s.probe(ctx)
	if ctx.Err() != nil {
		return
	}

	if up {
		if s.state.Cycles != 0 {
			s.log.Info("reachability observed, outage counter reset", zap.Int("cycles", s.state.Cycles))
			s.state.Cycles = 0
			s.emit(Event{Kind: EventCycle})
		}
		return
	}

	s.recover(ctx)
}

// probe asks the prober once and reports the result to observers.
func (s *Supervisor) probe(ctx context.Context) bool {
	up := s.prober.Reachable(ctx, s.cfg.Targets)
	if ctx.Err() != nil {
		return false
	}
	s.log.Debug("probe", zap.Bool("up", up), zap.Stringer("phase", s.state.Phase))
	s.emit(Event{Kind: EventProbe, Up: up})
	return up
}

func (s *Supervisor) transition(to Phase, reason string) {
	from := s.state.Phase
	if from == to {
		return
	}
	s.state.Phase = to
	s.state.Since = s.now()

	s.log.Info("state transition",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.String("reason", reason),
		zap.Int("cycles", s.state.Cycles),
		zap.String("outage", s.outage),
	)
	s.emit(Event{Kind: EventTransition, From: from})
}

func (s *Supervisor) emit(e Event) {
	e.At = s.now()
	e.State = s.state
	e.Outage = s.outage
	s.obs.Observe(e)
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
