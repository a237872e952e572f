// Package ws provides the WebSocket transport for the relay, built on gobwas/ws
// over a raw net.Conn.
package ws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DeepanKumar2553/neoshare/internal/relay"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// DefaultMaxMessageSize bounds one inbound message.
const DefaultMaxMessageSize = 64 << 20

var (
	// ErrMessageTooLarge is returned by Read when a message exceeds the size limit.
	ErrMessageTooLarge = errors.New("ws: message too large")

	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("ws: connection closed")
)

// aLongTimeAgo is a deadline in the past, used to unblock pending I/O.
var aLongTimeAgo = time.Unix(1, 0)

// Option configures a Conn.
type Option func(*Conn)

// WithMaxMessageSize sets the inbound message limit. Zero or negative keeps the default.
func WithMaxMessageSize(n int64) Option {
	return func(c *Conn) {
		if n > 0 {
			c.maxMessageSize = n
		}
	}
}

// WithWriteTimeout bounds each Send. Zero means no timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Conn) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// Conn is a server-side WebSocket connection. It has a single reader and any
// number of writers; all frames, including control replies, go out under one
// write lock.
type Conn struct {
	raw net.Conn

	rd  wsutil.Reader
	ctl bytes.Buffer

	wmu       sync.Mutex
	closeSent bool
	closed    bool
	// closing is set once the connection is going away; new sends are refused.
	closing atomic.Bool

	maxMessageSize int64
	writeTimeout   time.Duration
}

// Upgrade performs the server handshake on raw. src supplies the request bytes
// and may be a buffered reader holding data already peeked from raw. onRequest,
// when non-nil, receives the request URI before the handshake completes.
func Upgrade(raw net.Conn, src io.Reader, onRequest func(uri string), opts ...Option) (*Conn, error) {
	if src == nil {
		src = raw
	}

	u := ws.Upgrader{
		OnRequest: func(uri []byte) error {
			if onRequest != nil {
				onRequest(string(uri))
			}
			return nil
		},
	}
	rw := struct {
		io.Reader
		io.Writer
	}{src, raw}
	if _, err := u.Upgrade(rw); err != nil {
		return nil, err
	}

	return newConn(raw, src, opts...), nil
}

func newConn(raw net.Conn, src io.Reader, opts ...Option) *Conn {
	c := &Conn{
		raw:            raw,
		maxMessageSize: DefaultMaxMessageSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	onControl := wsutil.ControlFrameHandler(&c.ctl, ws.StateServerSide)
	c.rd = wsutil.Reader{
		Source:         src,
		State:          ws.StateServerSide,
		CheckUTF8:      true,
		MaxFrameSize:   c.maxMessageSize,
		OnIntermediate: onControl,
	}
	return c
}

// Reader returns the receive half. Only one goroutine may read at a time.
func (c *Conn) Reader() relay.Reader {
	return readHalf{c}
}

// Writer returns the send half.
func (c *Conn) Writer() relay.Writer {
	return writeHalf{c}
}

// RemoteAddr returns the peer's network address.
func (c *Conn) RemoteAddr() string {
	return c.raw.RemoteAddr().String()
}

// Read returns the next text, binary or close frame. Pings are answered and
// reported as FrameControl. A close frame from the peer is echoed before
// FrameClose is returned.
func (c *Conn) Read(ctx context.Context) (relay.Frame, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = c.raw.SetReadDeadline(aLongTimeAgo)
	})
	defer stop()

	f, err := c.read()
	if err != nil && ctx.Err() != nil {
		return relay.Frame{}, ctx.Err()
	}
	return f, err
}

func (c *Conn) read() (relay.Frame, error) {
	for {
		hdr, err := c.rd.NextFrame()
		if err != nil {
			if errors.Is(err, wsutil.ErrFrameTooLarge) {
				return relay.Frame{}, fmt.Errorf("%w: %w", ErrMessageTooLarge, err)
			}
			return relay.Frame{}, err
		}

		if hdr.OpCode == ws.OpClose {
			err := c.rd.OnIntermediate(hdr, &c.rd)
			c.replyClose()
			var closed wsutil.ClosedError
			if err == nil || errors.As(err, &closed) {
				return relay.Frame{Kind: relay.FrameClose}, nil
			}
			return relay.Frame{}, err
		}
		if hdr.OpCode.IsControl() {
			if err := c.handleControl(hdr); err != nil {
				return relay.Frame{}, err
			}
			return relay.Frame{Kind: relay.FrameControl}, nil
		}

		kind := relay.FrameBinary
		switch hdr.OpCode {
		case ws.OpText:
			kind = relay.FrameText
		case ws.OpBinary:
		default:
			if err := c.rd.Discard(); err != nil {
				return relay.Frame{}, err
			}
			continue
		}

		data, err := io.ReadAll(io.LimitReader(&c.rd, c.maxMessageSize+1))
		if flushErr := c.flushControl(); err == nil {
			err = flushErr
		}
		if err != nil {
			return relay.Frame{}, err
		}
		if int64(len(data)) > c.maxMessageSize {
			return relay.Frame{}, ErrMessageTooLarge
		}
		return relay.Frame{Kind: kind, Data: data}, nil
	}
}

// handleControl answers a control frame and flushes the reply.
func (c *Conn) handleControl(hdr ws.Header) error {
	err := c.rd.OnIntermediate(hdr, &c.rd)
	if flushErr := c.flushControl(); err == nil {
		err = flushErr
	}
	return err
}

func (c *Conn) flushControl() error {
	if c.ctl.Len() == 0 {
		return nil
	}
	defer c.ctl.Reset()

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed {
		return nil
	}
	_, err := c.raw.Write(c.ctl.Bytes())
	return err
}

// replyClose echoes the peer's close frame. A send stuck on a peer that
// stopped reading is failed first so the echo never waits behind it.
func (c *Conn) replyClose() {
	defer c.ctl.Reset()

	interrupted := c.lockForClose()
	defer c.wmu.Unlock()

	if !c.closed && !c.closeSent && !interrupted && c.ctl.Len() > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(time.Second))
		_, _ = c.raw.Write(c.ctl.Bytes())
	}
	c.closeSent = true
}

// lockForClose marks the connection as closing and takes the write lock,
// failing any in-flight write by moving the write deadline into the past.
// It reports whether a write had to be interrupted, in which case the
// stream may hold a partial frame and no close frame should follow it.
func (c *Conn) lockForClose() (interrupted bool) {
	c.closing.Store(true)
	for !c.wmu.TryLock() {
		interrupted = true
		_ = c.raw.SetWriteDeadline(aLongTimeAgo)
		time.Sleep(time.Millisecond)
	}
	return interrupted
}

// Send writes f as one unfragmented frame.
func (c *Conn) Send(ctx context.Context, f relay.Frame) error {
	var op ws.OpCode
	switch f.Kind {
	case relay.FrameText:
		op = ws.OpText
	case relay.FrameBinary:
		op = ws.OpBinary
	case relay.FrameClose:
		return c.Close()
	default:
		return fmt.Errorf("ws: cannot send %v frame", f.Kind)
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed || c.closeSent || c.closing.Load() {
		return ErrClosed
	}

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		defer c.raw.SetWriteDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.raw.SetWriteDeadline(aLongTimeAgo)
	})
	defer stop()

	err := wsutil.WriteServerMessage(c.raw, op, f.Data)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Close sends a normal closure frame and closes the underlying connection.
// A send blocked on a peer that stopped reading is failed rather than waited
// for. It is safe to call more than once.
func (c *Conn) Close() error {
	interrupted := c.lockForClose()
	if c.closed {
		c.wmu.Unlock()
		return nil
	}
	c.closed = true
	if !c.closeSent && !interrupted {
		c.closeSent = true
		_ = c.raw.SetWriteDeadline(time.Now().Add(time.Second))
		body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "")
		_ = ws.WriteFrame(c.raw, ws.NewCloseFrame(body))
	}
	c.wmu.Unlock()

	return c.raw.Close()
}

type readHalf struct{ c *Conn }

func (r readHalf) Read(ctx context.Context) (relay.Frame, error) { return r.c.Read(ctx) }

type writeHalf struct{ c *Conn }

func (w writeHalf) Send(ctx context.Context, f relay.Frame) error { return w.c.Send(ctx, f) }
