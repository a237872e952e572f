package server

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/DeepanKumar2553/neoshare/internal/relay"
	"github.com/DeepanKumar2553/neoshare/internal/transport/ws"
	"go.uber.org/zap"
)

// ErrHandshakeFailure wraps a failed WebSocket upgrade.
var ErrHandshakeFailure = errors.New("server: websocket handshake failed")

// serveWebSocket upgrades conn and runs it through the relay handler until
// the connection ends.
func (s *Server) serveWebSocket(conn net.Conn, reader *bufio.Reader, fields []zap.Field) {
	log := s.log.With(fields...)

	var req relay.JoinRequest
	wsConn, err := ws.Upgrade(conn, reader,
		func(uri string) { req = relay.ParseJoinRequest(uri) },
		ws.WithMaxMessageSize(s.opts.MaxMessageSize),
		ws.WithWriteTimeout(s.opts.WriteTimeout),
	)
	if err != nil {
		metricHandshakeFailures.Inc()
		log.Warn("upgrade failed", zap.Error(fmt.Errorf("%w: %w", ErrHandshakeFailure, err)))
		return
	}
	defer wsConn.Close()

	// no timeout on an active relay
	_ = conn.SetDeadline(time.Time{})
	log.Debug("websocket upgraded", zap.String("room", req.Room), zap.String("role", req.Role))

	err = s.handler.Serve(s.ctx, req, wsConn.Reader(), wsConn.Writer(), fields...)
	switch {
	case err == nil:
		log.Debug("connection finished")
	case errors.Is(err, relay.ErrMissingJoinParameters),
		errors.Is(err, relay.ErrInvalidRole),
		errors.Is(err, relay.ErrRoleConflict):
		log.Debug("connection rejected", zap.Error(err))
	default:
		log.Info("connection ended with error", zap.Error(err))
	}
}
