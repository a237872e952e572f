package server

import (
	"bufio"
	"bytes"
	"errors"
)

// maxHeaderBytes bounds how much of a request is peeked during classification.
const maxHeaderBytes = 16 << 10

var errHeaderTooLarge = errors.New("server: request header too large")

var httpMethods = [][]byte{
	[]byte("GET "),
	[]byte("POST"),
	[]byte("PUT "),
	[]byte("HEAD"),
	[]byte("OPTI"), // OPTIONS
	[]byte("PATC"), // PATCH
	[]byte("DELE"), // DELETE
	[]byte("CONN"), // CONNECT
}

var headerEnd = []byte("\r\n\r\n")

// isPlainRequest peeks at the request head without consuming it and reports
// whether it is an HTTP request that does not ask for a WebSocket upgrade.
// Anything that does not start like an HTTP request is reported as not plain
// and left for the upgrader to reject.
func isPlainRequest(br *bufio.Reader) (bool, error) {
	prefix, err := br.Peek(4)
	if err != nil {
		return false, err
	}
	if !isHTTPMethod(prefix) {
		return false, nil
	}

	n := max(br.Buffered(), len(prefix))
	for {
		head, err := br.Peek(n)
		if err != nil {
			if errors.Is(err, bufio.ErrBufferFull) {
				return false, errHeaderTooLarge
			}
			return false, err
		}
		if end := bytes.Index(head, headerEnd); end >= 0 {
			return !wantsWebSocket(head[:end]), nil
		}
		// scan whatever is buffered before waiting for one more byte
		n = max(br.Buffered(), len(head)+1)
	}
}

func isHTTPMethod(prefix []byte) bool {
	for _, m := range httpMethods {
		if bytes.HasPrefix(prefix, m) {
			return true
		}
	}
	return false
}

// wantsWebSocket reports whether the header block carries Upgrade: websocket.
func wantsWebSocket(head []byte) bool {
	lines := bytes.Split(head, []byte("\r\n"))
	for _, line := range lines[1:] {
		key, value, ok := bytes.Cut(line, []byte(":"))
		if !ok {
			continue
		}
		if !bytes.EqualFold(bytes.TrimSpace(key), []byte("Upgrade")) {
			continue
		}
		for _, token := range bytes.Split(value, []byte(",")) {
			if bytes.EqualFold(bytes.TrimSpace(token), []byte("websocket")) {
				return true
			}
		}
	}
	return false
}
