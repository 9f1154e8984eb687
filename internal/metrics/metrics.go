// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tamzrod/linkwatch/internal/supervisor"
)

const namespace = "linkwatch"

var phases = []supervisor.Phase{supervisor.Monitoring, supervisor.Recovering, supervisor.Escalating}

// Metrics turns supervisor events into Prometheus series on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	phase         *prometheus.GaugeVec
	cycles        prometheus.Gauge
	probes        *prometheus.CounterVec
	activations   *prometheus.CounterVec
	stackRestarts *prometheus.CounterVec
	escalations   *prometheus.CounterVec
	transitions   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{
		reg: reg,
		phase: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase",
			Help:      "Current supervisor phase (1 for the active phase)",
		}, []string{"phase"}),
		cycles: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recovery_cycles",
			Help:      "Consecutive recovery cycles since reachability was last seen",
		}),
		probes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Reachability probes by result",
		}, []string{"result"}),
		activations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activations_total",
			Help:      "Profile activations by result (restored, unreachable, error)",
		}, []string{"result"}),
		stackRestarts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stack_restarts_total",
			Help:      "Network stack restarts by result",
		}, []string{"result"}),
		escalations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalations_total",
			Help:      "Dependent service restarts by result",
		}, []string{"result"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Phase transitions",
		}, []string{"from", "to"}),
	}

	m.setPhase(supervisor.Monitoring)
	return m
}

// Registry exposes the private registry for serving.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Observe implements supervisor.Observer.
func (m *Metrics) Observe(e supervisor.Event) {
	m.cycles.Set(float64(e.State.Cycles))

	switch e.Kind {
	case supervisor.EventProbe:
		m.probes.WithLabelValues(upDown(e.Up)).Inc()
	case supervisor.EventTransition:
		m.transitions.WithLabelValues(e.From.String(), e.State.Phase.String()).Inc()
		m.setPhase(e.State.Phase)
	case supervisor.EventActivation:
		switch {
		case e.Err != nil:
			m.activations.WithLabelValues("error").Inc()
		case e.Up:
			m.activations.WithLabelValues("restored").Inc()
		default:
			m.activations.WithLabelValues("unreachable").Inc()
		}
	case supervisor.EventStackRestart:
		m.stackRestarts.WithLabelValues(okErr(e.Err)).Inc()
	case supervisor.EventEscalation:
		m.escalations.WithLabelValues(okErr(e.Err)).Inc()
	}
}

func (m *Metrics) setPhase(current supervisor.Phase) {
	for _, p := range phases {
		v := 0.0
		if p == current {
			v = 1
		}
		m.phase.WithLabelValues(p.String()).Set(v)
	}
}

func upDown(up bool) string {
	if up {
		return "up"
	}
	return "down"
}

func okErr(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
