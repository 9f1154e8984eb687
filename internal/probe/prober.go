// Package probe answers "is the internet reachable right now?".
//
// Two implementations exist: PingProber shells out to ping(8),
// ICMPProber speaks ICMP echo directly over an
// unprivileged datagram socket. Both treat the target list as "any answers".
package probe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/linkwatch/internal/command"
)

// Method names accepted by New (probe.method in config).
const (
	MethodPing = "ping"
	MethodICMP = "icmp"
)

// Options carries the settings shared by every prober.
type Options struct {
	Method  string
	Count   int
	Timeout time.Duration
	Runner  command.Runner // ping method only
	Logger  *zap.Logger
}

// New builds the prober selected by opts.Method.
func New(opts Options) (Prober, error) {
	switch opts.Method {
	case MethodPing, "":
		if opts.Runner == nil {
			return nil, fmt.Errorf("probe: ping method needs a command runner")
		}
		return &PingProber{
			Runner:  opts.Runner,
			Count:   opts.Count,
			Timeout: opts.Timeout,
			Logger:  opts.Logger,
		}, nil
	case MethodICMP:
		return &ICMPProber{
			Count:   opts.Count,
			Timeout: opts.Timeout,
			Logger:  opts.Logger,
		}, nil
	default:
		return nil, fmt.Errorf("probe: unknown method %q", opts.Method)
	}
}

// Prober is satisfied by both implementations; it mirrors supervisor.Prober.
type Prober interface {
	Reachable(ctx context.Context, targets []string) bool
}

// bound is the hard ceiling for probing one target: every echo may use its
// full timeout, plus a second for process start-up.
func bound(count int, timeout time.Duration) time.Duration {
	return time.Duration(max(count, 1))*timeout + time.Second
}

func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
