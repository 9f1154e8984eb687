// internal/probe/icmp.go
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// ICMPProber sends echo requests without the ping binary.
//
// It uses an unprivileged "udp4" ICMP socket, so the process group must be
// inside net.ipv4.ping_group_range. IPv4 only.
type ICMPProber struct {
	Count    int
	Timeout  time.Duration // per echo
	Resolver *net.Resolver
	Logger   *zap.Logger
}

var errNoReply = errors.New("icmp: no echo reply")

// echoPayload tags our requests; replies carry it back.
var echoPayload = []byte("linkwatch-probe")

func (p *ICMPProber) Reachable(ctx context.Context, targets []string) bool {
	log := nopIfNil(p.Logger)

	for _, t := range targets {
		if ctx.Err() != nil {
			return false
		}

		tctx, cancel := context.WithTimeout(ctx, bound(p.Count, p.Timeout))
		err := p.echo(tctx, t)
		cancel()

		if err == nil {
			log.Debug("probe target answered", zap.String("target", t), zap.String("method", MethodICMP))
			return true
		}
		log.Debug("probe target silent", zap.String("target", t), zap.String("method", MethodICMP), zap.Error(err))
	}
	return false
}

func (p *ICMPProber) echo(ctx context.Context, target string) error {
	ip, err := p.resolve(ctx, target)
	if err != nil {
		return err
	}

	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err != nil {
		return fmt.Errorf("icmp: listen: %w", err)
	}
	defer conn.Close()

	// Unblock ReadFrom immediately on shutdown.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	id := os.Getpid() & 0xffff
	buf := make([]byte, 1500)

	for seq := 1; seq <= max(p.Count, 1); seq++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		req, err := (&icmp.Message{
			Type: ipv4.ICMPTypeEcho,
			Code: 0,
			Body: &icmp.Echo{ID: id, Seq: seq, Data: echoPayload},
		}).Marshal(nil)
		if err != nil {
			return fmt.Errorf("icmp: marshal: %w", err)
		}

		if _, err := conn.WriteTo(req, &net.UDPAddr{IP: ip}); err != nil {
			return fmt.Errorf("icmp: send to %s: %w", ip, err)
		}

		deadline := time.Now().Add(p.Timeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		_ = conn.SetReadDeadline(deadline)

		if p.awaitReply(conn, ip, seq, buf) {
			return nil
		}
	}
	return errNoReply
}

// awaitReply reads until a matching echo reply arrives or the deadline hits.
// The kernel rewrites the echo ID on datagram sockets, so matching is by peer and seq.
func (p *ICMPProber) awaitReply(conn *icmp.PacketConn, ip net.IP, seq int, buf []byte) bool {
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			return false
		}

		msg, err := icmp.ParseMessage(ipv4.ICMPTypeEcho.Protocol(), buf[:n])
		if err != nil || msg.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := msg.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq {
			continue
		}
		if ua, ok := peer.(*net.UDPAddr); ok && !ua.IP.Equal(ip) {
			continue
		}
		return true
	}
}

func (p *ICMPProber) resolve(ctx context.Context, target string) (net.IP, error) {
	if ip := net.ParseIP(target); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		return nil, fmt.Errorf("icmp: %s is not IPv4", target)
	}

	r := p.Resolver
	if r == nil {
		r = net.DefaultResolver
	}
	addrs, err := r.LookupIP(ctx, "ip4", target)
	if err != nil {
		return nil, fmt.Errorf("icmp: resolve %s: %w", target, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("icmp: %s has no IPv4 address", target)
	}
	return addrs[0].To4(), nil
}
