// internal/writer/publisher.go
package writer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/linkwatch/internal/status"
)

// SnapshotSource is satisfied by *status.Board.
type SnapshotSource interface {
	Snapshot() status.Snapshot
}

// Publisher copies the board into status memory once per tick.
// seconds_offline advances on the tick, not on supervisor events.
type Publisher struct {
	Source   SnapshotSource
	Writer   StatusWriter
	Logger   *zap.Logger
	Interval time.Duration // default 1s
	Now      func() time.Time
}

// Run writes immediately, then on every tick until ctx is done.
// Write failures are logged on change of outcome only, so a dead endpoint
// produces one warning instead of one per second.
func (p *Publisher) Run(ctx context.Context) error {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}

	failing := false
	publish := func() {
		err := p.Writer.WriteStatus(p.Source.Snapshot(), now())
		switch {
		case err != nil && !failing:
			log.Warn("status block write failed", zap.Error(err))
			failing = true
		case err == nil && failing:
			log.Info("status block write recovered")
			failing = false
		}
	}

	publish()

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			publish()
		}
	}
}
