// internal/metrics/metrics_test.go
package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tamzrod/linkwatch/internal/supervisor"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	s := &Server{Metrics: m}
	rec := httptest.NewRecorder()
	s.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func state(p supervisor.Phase, cycles int) supervisor.State {
	return supervisor.State{Phase: p, Cycles: cycles}
}

func TestObserve_CountsOutageSequence(t *testing.T) {
	m := New()

	m.Observe(supervisor.Event{Kind: supervisor.EventProbe, State: state(supervisor.Monitoring, 0)})
	m.Observe(supervisor.Event{Kind: supervisor.EventTransition, From: supervisor.Monitoring, State: state(supervisor.Recovering, 0)})
	m.Observe(supervisor.Event{Kind: supervisor.EventStackRestart, State: state(supervisor.Recovering, 0)})
	m.Observe(supervisor.Event{Kind: supervisor.EventCycle, State: state(supervisor.Recovering, 1)})
	m.Observe(supervisor.Event{Kind: supervisor.EventActivation, Err: errors.New("exit 4"), State: state(supervisor.Recovering, 1)})
	m.Observe(supervisor.Event{Kind: supervisor.EventActivation, State: state(supervisor.Recovering, 1)})
	m.Observe(supervisor.Event{Kind: supervisor.EventActivation, Up: true, State: state(supervisor.Recovering, 1)})

	body := scrape(t, m)
	assert.Contains(t, body, `linkwatch_probes_total{result="down"} 1`)
	assert.Contains(t, body, `linkwatch_transitions_total{from="monitoring",to="recovering"} 1`)
	assert.Contains(t, body, `linkwatch_stack_restarts_total{result="ok"} 1`)
	assert.Contains(t, body, `linkwatch_activations_total{result="error"} 1`)
	assert.Contains(t, body, `linkwatch_activations_total{result="unreachable"} 1`)
	assert.Contains(t, body, `linkwatch_activations_total{result="restored"} 1`)
	assert.Contains(t, body, `linkwatch_recovery_cycles 1`)
	assert.Contains(t, body, `linkwatch_phase{phase="recovering"} 1`)
	assert.Contains(t, body, `linkwatch_phase{phase="monitoring"} 0`)
}

func TestObserve_Escalation(t *testing.T) {
	m := New()

	m.Observe(supervisor.Event{Kind: supervisor.EventEscalation, Err: errors.New("unit not found"), State: state(supervisor.Escalating, 3)})
	m.Observe(supervisor.Event{Kind: supervisor.EventTransition, From: supervisor.Escalating, State: state(supervisor.Monitoring, 3)})

	body := scrape(t, m)
	assert.Contains(t, body, `linkwatch_escalations_total{result="error"} 1`)
	assert.Contains(t, body, `linkwatch_phase{phase="monitoring"} 1`)
	assert.Contains(t, body, `linkwatch_recovery_cycles 3`)
}

func TestNew_StartsInMonitoring(t *testing.T) {
	body := scrape(t, New())
	assert.Contains(t, body, `linkwatch_phase{phase="monitoring"} 1`)
	assert.Contains(t, body, `linkwatch_phase{phase="escalating"} 0`)
	assert.Contains(t, body, "go_goroutines")
}

func TestServer_ServesAndShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{Metrics: New(), ShutdownTimeout: time.Second}

	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Contains(t, string(body), "linkwatch_phase")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	http.DefaultClient.CloseIdleConnections()
}

func TestServer_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := &Server{Listen: ln.Addr().String(), Metrics: New()}
	assert.Error(t, s.Run(context.Background()))
}
