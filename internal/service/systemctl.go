// internal/service/systemctl.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tamzrod/linkwatch/internal/command"
)

// Systemctl restarts dependent units through systemctl(1).
// The restart is not verified; callers treat it as best-effort.
type Systemctl struct {
	Runner command.Runner
}

func New(r command.Runner) (*Systemctl, error) {
	if r == nil {
		return nil, errors.New("service: command runner required")
	}
	return &Systemctl{Runner: r}, nil
}

func (s *Systemctl) Restart(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("service: empty unit name")
	}
	if _, err := s.Runner.Run(ctx, "systemctl", "restart", name); err != nil {
		return fmt.Errorf("service: restart %s: %w", name, err)
	}
	return nil
}
