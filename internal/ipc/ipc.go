// internal/ipc/ipc.go
package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/linkwatch/internal/status"
)

const DefaultSocketPath = "/run/linkwatch.sock"

// ioTimeout bounds one request/response exchange.
const ioTimeout = 5 * time.Second

type ControlMessage struct {
	Cmd string `json:"cmd"`
}

type Response struct {
	OK     bool             `json:"ok"`
	Error  string           `json:"error,omitempty"`
	Status *status.Snapshot `json:"status,omitempty"`
}

// SnapshotSource is satisfied by *status.Board.
type SnapshotSource interface {
	Snapshot() status.Snapshot
}

// Server answers control requests on a unix socket, one request per connection.
type Server struct {
	Path   string
	Source SnapshotSource
	Logger *zap.Logger
}

// Run listens until ctx is cancelled, then removes the socket file.
func (s *Server) Run(ctx context.Context) error {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// stale socket from a previous run
	_ = os.Remove(s.Path)

	ln, err := net.Listen("unix", s.Path)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	log.Info("control socket listening", zap.String("path", s.Path))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				log.Info("control socket closed")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			log.Warn("control socket accept failed", zap.Error(err))
			continue
		}
		s.handleConn(conn, log)
	}
}

// handleConn runs inline: requests are tiny and the deadline bounds a stuck peer.
func (s *Server) handleConn(conn net.Conn, log *zap.Logger) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(ioTimeout))

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		log.Debug("control request decode failed", zap.Error(err))
		_ = json.NewEncoder(conn).Encode(Response{Error: "bad request"})
		return
	}

	var resp Response
	switch msg.Cmd {
	case "status":
		snap := s.Source.Snapshot()
		resp = Response{OK: true, Status: &snap}
	default:
		resp = Response{Error: "unknown command"}
	}

	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		log.Debug("control response write failed", zap.Error(err))
	}
}

// SendCommand sends one request and waits for the response.
func SendCommand(ctx context.Context, path, cmd string) (Response, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	deadline := time.Now().Add(ioTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)

	if err := json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd}); err != nil {
		return Response{}, fmt.Errorf("send: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("receive: %w", err)
	}
	if !resp.OK {
		return resp, fmt.Errorf("daemon: %s", resp.Error)
	}
	return resp, nil
}
