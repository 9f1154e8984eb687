// internal/service/systemctl_test.go
package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/linkwatch/internal/command"
)

type recordingRunner struct {
	err   error
	calls [][]string
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return nil, r.err
}

func TestRestart(t *testing.T) {
	r := &recordingRunner{}
	s, err := New(r)
	require.NoError(t, err)

	require.NoError(t, s.Restart(context.Background(), "ai-necklace.service"))
	assert.Equal(t, [][]string{{"systemctl", "restart", "ai-necklace.service"}}, r.calls)
}

func TestRestart_TimeoutSurfaces(t *testing.T) {
	s, _ := New(&recordingRunner{err: command.ErrTimeout})

	err := s.Restart(context.Background(), "ai-necklace.service")
	require.ErrorIs(t, err, command.ErrTimeout)
}

func TestRestart_EmptyName(t *testing.T) {
	r := &recordingRunner{}
	s, _ := New(r)

	require.Error(t, s.Restart(context.Background(), ""))
	assert.Empty(t, r.calls)
}

func TestNew_NilRunner(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
