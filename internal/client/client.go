// Package client connects to a relay server as one side of a room.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/DeepanKumar2553/neoshare/internal/relay"
	"github.com/DeepanKumar2553/neoshare/pkg/protocol"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// DefaultReadLimit bounds one inbound message, matching the server default.
const DefaultReadLimit = 64 << 20

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("client: closed")

// Option configures a Client.
type Option func(*Client)

// WithName sets the sender name stamped on outgoing messages.
func WithName(name string) Option {
	return func(c *Client) { c.name = name }
}

// WithLogger sets the client logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithReadLimit sets the largest message the client accepts.
func WithReadLimit(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.readLimit = n
		}
	}
}

// Client is one joined side of a room.
type Client struct {
	name      string
	room      string
	role      relay.Role
	log       *zap.Logger
	readLimit int64

	conn     *websocket.Conn
	messages chan protocol.Message

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	wg     sync.WaitGroup

	mu  sync.Mutex
	err error
}

// JoinURL adds the room and role to serverURL. http and https are mapped to
// ws and wss.
func JoinURL(serverURL, room string, role relay.Role) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server url %q: unsupported scheme", serverURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	q := u.Query()
	q.Set(relay.QueryRoom, room)
	q.Set(relay.QueryRole, role.String())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial joins room on the relay at serverURL as role.
func Dial(ctx context.Context, serverURL, room string, role relay.Role, opts ...Option) (*Client, error) {
	target, err := JoinURL(serverURL, room, role)
	if err != nil {
		return nil, err
	}

	c := &Client{
		room:      room,
		role:      role,
		log:       zap.NewNop(),
		readLimit: DefaultReadLimit,
		messages:  make(chan protocol.Message, 10),
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	conn.SetReadLimit(c.readLimit)
	c.conn = conn
	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.log.Debug("joined room", zap.String("room", room), zap.Stringer("role", role))

	c.wg.Add(1)
	go c.receiveMessages()

	return c, nil
}

// Room returns the room code the client joined.
func (c *Client) Room() string {
	return c.room
}

// Role returns the role the client joined as.
func (c *Client) Role() relay.Role {
	return c.role
}

// Send encodes msg as an envelope and sends it as a binary frame. An empty
// Sender is filled with the client name and a zero SentAt with the current time.
func (c *Client) Send(ctx context.Context, msg protocol.Message) error {
	if msg.Sender == "" {
		msg.Sender = c.name
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}

	data, err := msg.Encode()
	if err != nil {
		return err
	}
	return c.write(ctx, websocket.MessageBinary, data)
}

// SendText sends text as a raw text frame with no envelope.
func (c *Client) SendText(ctx context.Context, text string) error {
	return c.write(ctx, websocket.MessageText, []byte(text))
}

// Join announces the client to its peer.
func (c *Client) Join(ctx context.Context) error {
	return c.Send(ctx, protocol.Message{Type: protocol.MessageTypeJoin})
}

// Leave tells the peer the client is going away.
func (c *Client) Leave(ctx context.Context) error {
	return c.Send(ctx, protocol.Message{Type: protocol.MessageTypeLeave})
}

func (c *Client) write(ctx context.Context, typ websocket.MessageType, data []byte) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	if err := c.conn.Write(ctx, typ, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Messages returns the channel for receiving messages. It is closed when the
// connection ends.
func (c *Client) Messages() <-chan protocol.Message {
	return c.messages
}

// Err reports why the connection ended. It is nil while connected and after
// a normal closure.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close closes the connection and waits for the receive loop to stop.
// It is safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		err = c.conn.Close(websocket.StatusNormalClosure, "")
		c.cancel()
		c.wg.Wait()
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			err = nil
		}
	})
	return err
}

func (c *Client) receiveMessages() {
	defer c.wg.Done()
	defer close(c.messages)

	for {
		typ, data, err := c.conn.Read(c.ctx)
		if err != nil {
			if c.ctx.Err() == nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				c.mu.Lock()
				c.err = err
				c.mu.Unlock()
				c.log.Debug("connection ended", zap.Error(err))
			}
			return
		}

		msg := decode(typ, data)
		select {
		case c.messages <- msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// decode turns a frame into a message. Text frames and binary frames that are
// not envelopes are delivered as text with the raw payload.
func decode(typ websocket.MessageType, data []byte) protocol.Message {
	if typ == websocket.MessageBinary {
		var msg protocol.Message
		if err := msg.Decode(data); err == nil {
			return msg
		}
	}
	return protocol.Message{Type: protocol.MessageTypeText, Content: string(data)}
}
