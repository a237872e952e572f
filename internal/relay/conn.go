package relay

import "context"

// FrameKind classifies an inbound or outbound frame.
type FrameKind int

const (
	FrameText FrameKind = iota
	FrameBinary
	FrameClose
	// FrameControl covers ping and pong. The transport answers them itself.
	FrameControl
)

// String returns the string representation of FrameKind
func (k FrameKind) String() string {
	switch k {
	case FrameText:
		return "text"
	case FrameBinary:
		return "binary"
	case FrameClose:
		return "close"
	case FrameControl:
		return "control"
	default:
		return "unknown"
	}
}

// Frame is one message on a duplex message connection.
type Frame struct {
	Kind FrameKind
	Data []byte
}

// TextFrame builds a text frame.
func TextFrame(s string) Frame {
	return Frame{Kind: FrameText, Data: []byte(s)}
}

// BinaryFrame builds a binary frame.
func BinaryFrame(b []byte) Frame {
	return Frame{Kind: FrameBinary, Data: b}
}

// IsData reports whether the frame carries a payload that should be relayed.
func (f Frame) IsData() bool {
	return f.Kind == FrameText || f.Kind == FrameBinary
}

// Reader is the receive half of a connection. It has exactly one owner.
type Reader interface {
	// Read returns the next frame. io.EOF means the stream ended cleanly.
	Read(ctx context.Context) (Frame, error)
}

// Writer is the send half of a connection. Ownership may move between
// goroutines, but only one goroutine uses it at a time.
type Writer interface {
	Send(ctx context.Context, f Frame) error
}
