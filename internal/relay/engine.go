package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Engine forwards frames from one connection to the writer held by its peer.
type Engine struct {
	registry *Registry
	log      *zap.Logger
}

// NewEngine creates an Engine backed by registry.
func NewEngine(registry *Registry, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{registry: registry, log: log}
}

// Run reads frames from r and forwards every text and binary frame to the
// peer of from in room code. It returns nil when the stream ends or a close
// frame arrives, and an error wrapping ErrReadFailure or ErrSendFailure
// otherwise. An absent peer is logged and skipped.
func (e *Engine) Run(ctx context.Context, code string, from Role, r Reader) error {
	log := e.log.With(zap.String("room", code), zap.Stringer("role", from))

	for {
		f, err := r.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			log.Debug("read failed", zap.Error(err))
			return fmt.Errorf("%w: %w", ErrReadFailure, err)
		}

		switch {
		case f.IsData():
			err := e.Forward(ctx, code, from, f)
			if errors.Is(err, ErrPeerUnavailable) {
				log.Info("peer not connected, frame dropped",
					zap.Stringer("target", from.Peer()),
					zap.Int("bytes", len(f.Data)))
				continue
			}
			if err != nil {
				return err
			}
		case f.Kind == FrameClose:
			log.Debug("close frame received")
			return nil
		default:
			// ping/pong are handled by the transport
		}
	}
}

// Forward delivers one frame to the peer of from. The peer's writer is
// detached from the registry for the duration of the send and reattached
// afterwards whether or not the send succeeded.
func (e *Engine) Forward(ctx context.Context, code string, from Role, f Frame) error {
	target := from.Peer()

	w, ok := e.registry.TakeWriter(code, target)
	if !ok {
		metricPeerUnavailable.Inc()
		return ErrPeerUnavailable
	}

	start := time.Now()
	sendErr := w.Send(ctx, f)
	metricSendMS.Observe(float64(time.Since(start).Microseconds()) / 1000)

	e.registry.ReturnWriter(code, target, w)

	if sendErr != nil {
		metricSendFailures.Inc()
		return fmt.Errorf("%w: %w", ErrSendFailure, sendErr)
	}

	metricForwarded.WithLabelValues(f.Kind.String()).Inc()
	metricForwardedBytes.Add(float64(len(f.Data)))
	return nil
}
