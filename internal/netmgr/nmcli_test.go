// internal/netmgr/nmcli_test.go
package netmgr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/linkwatch/internal/command"
)

type scriptedRunner struct {
	out   []byte
	err   error
	calls [][]string
}

func (s *scriptedRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return s.out, s.err
}

func TestListProfiles_KeepsOrderAndUnescapes(t *testing.T) {
	r := &scriptedRunner{out: []byte("Tethering_Phone\nWired connection 1\n\nHome\\:5G WiFi\nback\\\\slash\n")}
	m, err := New(r, "NetworkManager")
	require.NoError(t, err)

	names, err := m.ListProfiles(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Tethering_Phone", "Wired connection 1", "Home:5G WiFi", `back\slash`}, names)
	assert.Equal(t, []string{"nmcli", "-t", "-f", "NAME", "connection", "show"}, r.calls[0])
}

func TestListProfiles_EmptyOutput(t *testing.T) {
	m, _ := New(&scriptedRunner{}, "NetworkManager")

	names, err := m.ListProfiles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListProfiles_RunnerFailure(t *testing.T) {
	m, _ := New(&scriptedRunner{err: command.ErrTimeout}, "NetworkManager")

	_, err := m.ListProfiles(context.Background())
	require.ErrorIs(t, err, command.ErrTimeout)
}

func TestActivate_ByID(t *testing.T) {
	r := &scriptedRunner{}
	m, _ := New(r, "NetworkManager")

	require.NoError(t, m.Activate(context.Background(), "Tethering_Phone"))
	assert.Equal(t, []string{"nmcli", "connection", "up", "id", "Tethering_Phone"}, r.calls[0])

	require.Error(t, m.Activate(context.Background(), ""))
	assert.Len(t, r.calls, 1)
}

func TestActivate_FailureWrapped(t *testing.T) {
	cause := &command.ExitError{Command: "nmcli", Code: 4}
	m, _ := New(&scriptedRunner{err: cause}, "NetworkManager")

	err := m.Activate(context.Background(), "Tethering_Phone")
	require.Error(t, err)
	assert.Equal(t, 4, command.ExitCode(err))
	assert.Contains(t, err.Error(), "Tethering_Phone")
}

func TestRestartStack_UsesConfiguredUnit(t *testing.T) {
	r := &scriptedRunner{}
	m, _ := New(r, "NetworkManager.service")

	require.NoError(t, m.RestartStack(context.Background()))
	assert.Equal(t, []string{"systemctl", "restart", "NetworkManager.service"}, r.calls[0])

	r.err = errors.New("boom")
	require.Error(t, m.RestartStack(context.Background()))
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(nil, "NetworkManager")
	require.Error(t, err)
	_, err = New(&scriptedRunner{}, "")
	require.Error(t, err)
}
