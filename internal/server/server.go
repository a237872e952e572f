// Package server accepts relay connections on a single port. Plain HTTP
// requests get a health reply or metrics; WebSocket upgrades are handed to
// the relay handler.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/DeepanKumar2553/neoshare/internal/relay"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultMetricsPath      = "/metrics"
)

// ErrServerClosed is returned by Start after Stop.
var ErrServerClosed = errors.New("server: closed")

// Options configures a Server. The zero value serves health checks only and
// applies no limits beyond the defaults.
type Options struct {
	// HandshakeTimeout bounds classification and the WebSocket upgrade.
	HandshakeTimeout time.Duration
	// MaxMessageSize bounds one inbound WebSocket message.
	MaxMessageSize int64
	// WriteTimeout bounds each relayed send. Zero means none.
	WriteTimeout time.Duration

	MetricsEnabled bool
	MetricsPath    string

	Logger *zap.Logger
}

// Server listens on one address and dispatches each connection by protocol.
type Server struct {
	address string
	handler *relay.Handler
	opts    Options
	log     *zap.Logger
	plain   http.Handler

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	stopped  bool

	ctx    context.Context
	cancel context.CancelFunc
	quit   chan struct{}
	wg     sync.WaitGroup
}

// New creates a Server that relays upgraded connections through handler.
func New(address string, handler *relay.Handler, opts Options) *Server {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = DefaultMetricsPath
	}
	if !strings.HasPrefix(opts.MetricsPath, "/") {
		opts.MetricsPath = "/" + opts.MetricsPath
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		address: address,
		handler: handler,
		opts:    opts,
		log:     opts.Logger,
		plain:   newPlainHandler(opts.MetricsEnabled, opts.MetricsPath),
		conns:   make(map[net.Conn]struct{}),
		ctx:     ctx,
		cancel:  cancel,
		quit:    make(chan struct{}),
	}
}

// Start listens on the configured address and serves until Stop is called,
// after which it returns ErrServerClosed. A bind failure is returned as is.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		listener.Close()
		return ErrServerClosed
	}
	s.listener = listener
	s.mu.Unlock()

	s.log.Info("server started", zap.String("addr", listener.Addr().String()))

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return ErrServerClosed
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.log.Warn("failed to accept connection", zap.Error(err))
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return ErrServerClosed
		}
		go s.handleConnection(conn)
	}
}

// Stop closes the listener and every open connection, then waits for their
// handlers to finish. It is safe to call more than once.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.quit)
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("server stopped")
}

// Addr returns the server's listening address
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// ConnCount returns the number of open connections
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	gaugeConnsActive.Inc()
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	gaugeConnsActive.Dec()
	s.wg.Done()
}

// handleConnection determines whether the connection is a plain HTTP request
// or a WebSocket upgrade and serves it.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.untrack(conn)
	defer conn.Close()

	fields := []zap.Field{
		zap.String("conn_id", uuid.New().String()),
		zap.String("remote", conn.RemoteAddr().String()),
	}
	log := s.log.With(fields...)

	_ = conn.SetDeadline(time.Now().Add(s.opts.HandshakeTimeout))

	// Peek at the request head to determine protocol
	reader := bufio.NewReaderSize(conn, maxHeaderBytes)
	plain, err := isPlainRequest(reader)
	if err != nil {
		metricConnections.WithLabelValues("unknown").Inc()
		log.Debug("failed to classify connection", zap.Error(err))
		return
	}

	if plain {
		metricConnections.WithLabelValues("http").Inc()
		s.servePlain(conn, reader, log)
		return
	}
	metricConnections.WithLabelValues("websocket").Inc()
	s.serveWebSocket(conn, reader, fields)
}
