package server

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const healthBody = "OK"

// newPlainHandler routes plain HTTP requests: metrics on metricsPath when
// enabled, a fixed health reply everywhere else.
func newPlainHandler(metricsEnabled bool, metricsPath string) http.Handler {
	mux := http.NewServeMux()
	if metricsEnabled {
		mux.Handle(metricsPath, promhttp.Handler())
	}
	mux.HandleFunc("/", handleHealth)
	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Length", "2")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, healthBody)
}

// servePlain answers one plain HTTP request on conn and returns once the
// connection is closed or the server stops.
func (s *Server) servePlain(conn net.Conn, br *bufio.Reader, log *zap.Logger) {
	done := make(chan struct{})
	var once sync.Once

	httpServer := &http.Server{
		Handler:           s.plain,
		ReadHeaderTimeout: s.opts.HandshakeTimeout,
		WriteTimeout:      s.opts.HandshakeTimeout,
		ErrorLog:          zap.NewStdLog(log),
		ConnState: func(_ net.Conn, state http.ConnState) {
			if state == http.StateClosed || state == http.StateHijacked {
				once.Do(func() { close(done) })
			}
		},
	}
	httpServer.SetKeepAlivesEnabled(false)

	// Wrap the connection with the buffered reader so the peeked bytes are replayed
	bufConn := &bufferedConn{Conn: conn, reader: br}
	go httpServer.Serve(&singleConnListener{conn: bufConn})

	select {
	case <-done:
	case <-s.quit:
		_ = httpServer.Close()
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
	log.Debug("plain request served")
}

// bufferedConn wraps a net.Conn with a bufio.Reader to preserve peeked data
type bufferedConn struct {
	net.Conn
	reader *bufio.Reader
}

func (bc *bufferedConn) Read(p []byte) (int, error) {
	return bc.reader.Read(p)
}

// singleConnListener is a net.Listener that returns a single connection
type singleConnListener struct {
	conn net.Conn
	once sync.Once
}

func (l *singleConnListener) Accept() (net.Conn, error) {
	var c net.Conn
	l.once.Do(func() {
		c = l.conn
	})
	if c != nil {
		return c, nil
	}
	return nil, io.EOF
}

func (l *singleConnListener) Close() error {
	return nil
}

func (l *singleConnListener) Addr() net.Addr {
	return l.conn.LocalAddr()
}
