// internal/netmgr/nmcli.go
package netmgr

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/linkwatch/internal/command"
)

// NMCLI drives NetworkManager through nmcli(1) and systemctl(1).
// It owns no profile state: every call asks NetworkManager afresh.
type NMCLI struct {
	Runner       command.Runner
	StackService string // unit restarted by RestartStack, normally NetworkManager
}

func New(r command.Runner, stackService string) (*NMCLI, error) {
	if r == nil {
		return nil, errors.New("netmgr: command runner required")
	}
	if stackService == "" {
		return nil, errors.New("netmgr: stack service required")
	}
	return &NMCLI{Runner: r, StackService: stackService}, nil
}

// ListProfiles returns saved connection names in nmcli's listing order.
func (m *NMCLI) ListProfiles(ctx context.Context) ([]string, error) {
	out, err := m.Runner.Run(ctx, "nmcli", "-t", "-f", "NAME", "connection", "show")
	if err != nil {
		return nil, fmt.Errorf("netmgr: list profiles: %w", err)
	}
	return parseNames(out), nil
}

// Activate brings one profile up by name.
func (m *NMCLI) Activate(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("netmgr: empty profile name")
	}
	if _, err := m.Runner.Run(ctx, "nmcli", "connection", "up", "id", name); err != nil {
		return fmt.Errorf("netmgr: activate %q: %w", name, err)
	}
	return nil
}

// RestartStack restarts the NetworkManager service itself.
func (m *NMCLI) RestartStack(ctx context.Context) error {
	if _, err := m.Runner.Run(ctx, "systemctl", "restart", m.StackService); err != nil {
		return fmt.Errorf("netmgr: restart %s: %w", m.StackService, err)
	}
	return nil
}

// parseNames reads one name per line of terse output.
// Blank lines are dropped; nmcli's terse escapes ("\:" and "\\") are undone.
func parseNames(out []byte) []string {
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		names = append(names, unescapeTerse(line))
	}
	return names
}

func unescapeTerse(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == ':' || s[i+1] == '\\') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
