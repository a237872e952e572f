package relay_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DeepanKumar2553/neoshare/internal/relay"
)

// mockConn is a mock implementation of relay.Reader and relay.Writer for testing.
type mockConn struct {
	readCh  chan relay.Frame
	readErr chan error

	sentMu  sync.Mutex
	sent    []relay.Frame
	sendErr error
	// block, when non-nil, holds every Send until it is closed.
	block chan struct{}
	// entered receives a value each time Send starts, if there is room.
	entered chan struct{}
}

func newMockConn() *mockConn {
	return &mockConn{
		readCh:  make(chan relay.Frame, 10),
		readErr: make(chan error, 1),
		entered: make(chan struct{}, 1),
	}
}

func (m *mockConn) Read(ctx context.Context) (relay.Frame, error) {
	select {
	case <-ctx.Done():
		return relay.Frame{}, ctx.Err()
	case err := <-m.readErr:
		return relay.Frame{}, err
	case f, ok := <-m.readCh:
		if !ok {
			return relay.Frame{}, io.EOF
		}
		return f, nil
	}
}

func (m *mockConn) Send(ctx context.Context, f relay.Frame) error {
	select {
	case m.entered <- struct{}{}:
	default:
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sentMu.Lock()
	defer m.sentMu.Unlock()
	data := make([]byte, len(f.Data))
	copy(data, f.Data)
	m.sent = append(m.sent, relay.Frame{Kind: f.Kind, Data: data})
	return nil
}

func (m *mockConn) Sent() []relay.Frame {
	m.sentMu.Lock()
	defer m.sentMu.Unlock()
	out := make([]relay.Frame, len(m.sent))
	copy(out, m.sent)
	return out
}

// Compile-time check that mockConn implements both halves
var (
	_ relay.Reader = (*mockConn)(nil)
	_ relay.Writer = (*mockConn)(nil)
)

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", msg)
}
