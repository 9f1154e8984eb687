// internal/supervisor/types.go
package supervisor

import (
	"context"
	"time"
)

// Phase is the supervisor's position in the monitor/recover cycle.
type Phase int

const (
	Monitoring Phase = iota
	Recovering
	Escalating
)

func (p Phase) String() string {
	switch p {
	case Monitoring:
		return "monitoring"
	case Recovering:
		return "recovering"
	case Escalating:
		return "escalating"
	default:
		return "unknown"
	}
}

// State lives for the process lifetime.
// Cycles counts consecutive recovery cycles since reachability was last seen UP.
type State struct {
	Phase  Phase
	Cycles int
	Since  time.Time // last phase transition
}

// Attempt is one profile activation inside a recovery cycle.
// Attempts are held only until the recovery sequence has been logged.
type Attempt struct {
	Profile  string
	Cycle    int
	Restored bool
	Err      error // activation failure; nil when the activation command succeeded
	At       time.Time
}

// ---- collaborators ----

// Prober answers whether any of targets responds.
type Prober interface {
	Reachable(ctx context.Context, targets []string) bool
}

// ProfileManager owns the saved network connection profiles.
type ProfileManager interface {
	ListProfiles(ctx context.Context) ([]string, error)
	Activate(ctx context.Context, name string) error
	RestartStack(ctx context.Context) error
}

// ServiceController restarts the dependent application service.
type ServiceController interface {
	Restart(ctx context.Context, name string) error
}

// ---- observation ----

type EventKind int

const (
	EventStart EventKind = iota
	EventProbe
	EventTransition
	EventCycle
	EventStackRestart
	EventActivation
	EventEscalation
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventProbe:
		return "probe"
	case EventTransition:
		return "transition"
	case EventCycle:
		return "cycle"
	case EventStackRestart:
		return "stack_restart"
	case EventActivation:
		return "activation"
	case EventEscalation:
		return "escalation"
	default:
		return "unknown"
	}
}

// Event is emitted synchronously from the supervisor loop.
// State is always the state after the event took effect.
type Event struct {
	Kind   EventKind
	At     time.Time
	State  State
	Outage string // empty outside a recovery sequence

	From    Phase  // EventTransition
	Up      bool   // EventProbe; EventActivation when reachability came back
	Profile string // EventActivation
	Err     error  // EventStackRestart, EventActivation, EventEscalation
}

// Observer receives every Event. Implementations must not block for long:
// they run on the supervisor's only goroutine.
type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// Observers fans events out in order. Nil entries are skipped.
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}
