// cmd/linkwatch/main_test.go
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tamzrod/linkwatch/internal/config"
	"github.com/tamzrod/linkwatch/internal/status"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linkwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCheckConfig_PrintsEffectiveConfig(t *testing.T) {
	path := writeConfig(t, "dependent_service_name: ai-necklace.service\nmax_retry: 5\n")
	t.Setenv("LINKWATCH_CHECK_INTERVAL", "10")

	out, err := execute(t, "check-config", "--config", path, "--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "debug")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "ai-necklace.service", cfg.DependentServiceName)
	assert.Equal(t, 5, cfg.MaxRetry)
	assert.Equal(t, 10, cfg.CheckInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestCheckConfig_MissingServiceIsAnError(t *testing.T) {
	path := writeConfig(t, "max_retry: 2\n")
	t.Setenv("LINKWATCH_DEPENDENT_SERVICE", "")

	_, err := execute(t, "check-config", "--config", path, "--env-file", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependent_service_name")
	assert.Contains(t, err.Error(), "missing required collaborator binding")
}

func TestRun_ConfigErrorReturnsBeforeStarting(t *testing.T) {
	path := writeConfig(t, "check_interval: 0\ndependent_service_name: app.service\n")

	_, err := execute(t, "run", "--config", path, "--env-file", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check_interval")
}

func TestStatus_DaemonNotRunning(t *testing.T) {
	_, err := execute(t, "status", "--socket", filepath.Join(t.TempDir(), "missing.sock"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supervisor not reachable")
}

func TestBuildStatusPublisher(t *testing.T) {
	board := status.NewBoard()

	pub, closeFn, err := buildStatusPublisher(config.StatusMemoryConfig{}, board, nil)
	require.NoError(t, err)
	assert.Nil(t, pub)
	assert.NoError(t, closeFn())

	pub, closeFn, err = buildStatusPublisher(config.StatusMemoryConfig{Endpoint: "127.0.0.1:1", UnitID: 1}, board, nil)
	require.NoError(t, err)
	require.NotNil(t, pub)
	assert.NoError(t, closeFn())

	// fails before any goroutine is started
	_, _, err = buildStatusPublisher(config.StatusMemoryConfig{Endpoint: "127.0.0.1:1", UnitID: 1, Slot: 4000}, board, nil)
	assert.Error(t, err)
}
