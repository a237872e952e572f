package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often a waiting connection re-checks its room.
const DefaultPollInterval = 100 * time.Millisecond

// State is a step of a connection's lifecycle.
type State int

const (
	StateJoining State = iota
	StateRegistered
	StateWaiting
	StateRelaying
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateJoining:
		return "joining"
	case StateRegistered:
		return "registered"
	case StateWaiting:
		return "waiting"
	case StateRelaying:
		return "relaying"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Handler runs the lifecycle of each joined connection against a shared Registry.
type Handler struct {
	registry     *Registry
	engine       *Engine
	log          *zap.Logger
	pollInterval time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used by the handler and its engine.
func WithLogger(log *zap.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithPollInterval sets how often a waiting connection checks for its peer.
func WithPollInterval(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.pollInterval = d
		}
	}
}

// NewHandler creates a Handler for registry.
func NewHandler(registry *Registry, opts ...Option) *Handler {
	h := &Handler{
		registry:     registry,
		log:          zap.NewNop(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.engine = NewEngine(registry, h.log)
	return h
}

// Registry returns the registry the handler registers connections in.
func (h *Handler) Registry() *Registry {
	return h.registry
}

// Serve drives one upgraded connection from join to teardown. It blocks until
// the connection is done. A rejected join returns ErrMissingJoinParameters,
// ErrInvalidRole or ErrRoleConflict without touching any room. Once joined,
// the role is always released before Serve returns. fields are attached to
// every log line of this connection.
func (h *Handler) Serve(ctx context.Context, req JoinRequest, r Reader, w Writer, fields ...zap.Field) error {
	s := &session{
		h:     h,
		log:   h.log.With(fields...),
		state: StateJoining,
	}

	role, err := req.validate()
	if err != nil {
		metricJoins.WithLabelValues(joinOutcome(err)).Inc()
		s.log.Debug("join rejected", zap.String("room", req.Room), zap.String("role", req.Role), zap.Error(err))
		s.transition(StateClosed)
		return err
	}
	s.code, s.role = req.Room, role
	s.log = s.log.With(zap.String("room", s.code), zap.Stringer("role", s.role))

	complete, err := h.registry.Join(s.code, s.role, w)
	metricJoins.WithLabelValues(joinOutcome(err)).Inc()
	if err != nil {
		s.log.Info("join refused", zap.Error(err))
		s.transition(StateClosed)
		return err
	}
	gaugeSessionsActive.Inc()
	s.transition(StateRegistered)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	in := pump(ctx, r)

	defer func() {
		s.transition(StateClosing)
		h.registry.Leave(s.code, s.role)
		gaugeSessionsActive.Dec()
		s.log.Info("left room")
		s.transition(StateClosed)
	}()

	if complete {
		metricPairings.Inc()
		s.log.Info("room complete, relaying")
	} else {
		s.log.Info("waiting for peer", zap.Stringer("peer", s.role.Peer()))
		s.transition(StateWaiting)
		paired, err := s.wait(ctx, in)
		if err != nil || !paired {
			return err
		}
	}

	s.transition(StateRelaying)
	return h.engine.Run(ctx, s.code, s.role, in)
}

type session struct {
	h     *Handler
	log   *zap.Logger
	code  string
	role  Role
	state State
}

func (s *session) transition(next State) {
	s.log.Debug("state change", zap.Stringer("from", s.state), zap.Stringer("to", next))
	s.state = next
}

// wait polls the registry until the room is complete while draining inbound
// frames. It reports false when the connection ended before a peer arrived.
func (s *session) wait(ctx context.Context, in *pumpReader) (bool, error) {
	ticker := time.NewTicker(s.h.pollInterval)
	defer ticker.Stop()

	for {
		if s.h.registry.IsComplete(s.code) {
			s.log.Info("peer joined, relaying")
			return true, nil
		}

		select {
		case <-ctx.Done():
			return false, nil
		case <-ticker.C:
		case res, ok := <-in.ch:
			if !ok {
				return false, nil
			}
			if res.err != nil {
				if errors.Is(res.err, io.EOF) {
					s.log.Info("connection closed while waiting")
					return false, nil
				}
				s.log.Debug("read failed while waiting", zap.Error(res.err))
				return false, fmt.Errorf("%w: %w", ErrReadFailure, res.err)
			}
			switch res.frame.Kind {
			case FrameClose:
				s.log.Info("disconnected while waiting")
				return false, nil
			case FrameText, FrameBinary:
				metricWaitDiscards.Inc()
				s.log.Debug("frame ignored while waiting",
					zap.Stringer("kind", res.frame.Kind),
					zap.Int("bytes", len(res.frame.Data)))
			}
		}
	}
}

type readResult struct {
	frame Frame
	err   error
}

// pumpReader owns a connection's Reader for its whole life so the wait loop
// and the engine can both consume frames without sharing the reader.
type pumpReader struct {
	ch <-chan readResult
}

func pump(ctx context.Context, r Reader) *pumpReader {
	ch := make(chan readResult)
	go func() {
		defer close(ch)
		for {
			f, err := r.Read(ctx)
			select {
			case ch <- readResult{frame: f, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return &pumpReader{ch: ch}
}

func (p *pumpReader) Read(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case res, ok := <-p.ch:
		if !ok {
			return Frame{}, io.EOF
		}
		return res.frame, res.err
	}
}
