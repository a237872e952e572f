package ws

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/DeepanKumar2553/neoshare/internal/relay"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// stuckSend starts a Send that blocks because nothing reads the peer end of
// the pipe, and returns the channel carrying its result.
func stuckSend(t *testing.T, c *Conn) <-chan error {
	t.Helper()
	sent := make(chan error, 1)
	go func() {
		sent <- c.Send(context.Background(), relay.TextFrame("nobody is reading"))
	}()
	// give the send time to reach the blocked write
	time.Sleep(50 * time.Millisecond)
	select {
	case err := <-sent:
		t.Fatalf("Send() returned early: %v", err)
	default:
	}
	return sent
}

func TestConn_Close_DuringBlockedSend(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	c := newConn(server, server)
	sent := stuckSend(t, c)

	closed := make(chan error, 1)
	go func() { closed <- c.Close() }()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() blocked behind a send to a peer that is not reading")
	}

	select {
	case err := <-sent:
		if err == nil {
			t.Error("Send() error = nil, want a failure after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send() did not return after Close")
	}

	if err := c.Send(context.Background(), relay.TextFrame("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() after Close error = %v, want %v", err, ErrClosed)
	}
}

func TestConn_Read_PeerCloseDuringBlockedSend(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	c := newConn(server, server)
	defer c.Close()
	sent := stuckSend(t, c)

	go func() {
		body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "")
		_ = wsutil.WriteClientMessage(client, ws.OpClose, body)
	}()

	type result struct {
		f   relay.Frame
		err error
	}
	read := make(chan result, 1)
	go func() {
		f, err := c.Read(context.Background())
		read <- result{f, err}
	}()

	select {
	case res := <-read:
		if res.err != nil {
			t.Fatalf("Read() error = %v", res.err)
		}
		if res.f.Kind != relay.FrameClose {
			t.Errorf("Read() kind = %v, want close", res.f.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read() could not answer a close frame while a send was blocked")
	}

	select {
	case err := <-sent:
		if err == nil {
			t.Error("Send() error = nil, want a failure after the peer closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send() did not return after the peer closed")
	}
}
