// internal/probe/ping.go
package probe

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/linkwatch/internal/command"
)

// PingProber asks the system ping binary.
// A target answers when ping exits 0, i.e. at least one echo reply came back.
type PingProber struct {
	Runner  command.Runner
	Count   int
	Timeout time.Duration // per echo
	Logger  *zap.Logger
}

// Reachable reports whether any target answers. Targets are tried in order.
func (p *PingProber) Reachable(ctx context.Context, targets []string) bool {
	log := nopIfNil(p.Logger)

	for _, t := range targets {
		if ctx.Err() != nil {
			return false
		}

		tctx, cancel := context.WithTimeout(ctx, bound(p.Count, p.Timeout))
		_, err := p.Runner.Run(tctx, "ping", p.args(t)...)
		cancel()

		if err == nil {
			log.Debug("probe target answered", zap.String("target", t))
			return true
		}
		log.Debug("probe target silent", zap.String("target", t), zap.Error(err))
	}
	return false
}

func (p *PingProber) args(target string) []string {
	secs := int(p.Timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	return []string{
		"-n", "-q",
		"-c", strconv.Itoa(max(p.Count, 1)),
		"-W", strconv.Itoa(secs),
		target,
	}
}
