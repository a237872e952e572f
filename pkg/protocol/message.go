// Package protocol defines the envelope relay clients exchange. The relay
// itself forwards frames without looking inside them.
package protocol

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Envelope field names.
const (
	fieldType    = "type"
	fieldSender  = "sender"
	fieldContent = "content"
	fieldSentAt  = "sent_at"
)

// ErrNotEnvelope is returned by Decode when the payload is valid protobuf but
// carries no message type.
var ErrNotEnvelope = errors.New("protocol: not a message envelope")

// MessageType represents the type of message
type MessageType int

const (
	MessageTypeText MessageType = iota
	MessageTypeJoin
	MessageTypeLeave
)

// String returns the string representation of MessageType
func (mt MessageType) String() string {
	switch mt {
	case MessageTypeText:
		return "TEXT"
	case MessageTypeJoin:
		return "JOIN"
	case MessageTypeLeave:
		return "LEAVE"
	default:
		return "UNKNOWN"
	}
}

// parseMessageType is the inverse of String. Unknown names decode as
// MessageTypeText so newer peers stay readable.
func parseMessageType(s string) MessageType {
	switch s {
	case "JOIN":
		return MessageTypeJoin
	case "LEAVE":
		return MessageTypeLeave
	default:
		return MessageTypeText
	}
}

// Message represents a chat message
type Message struct {
	Type    MessageType
	Sender  string
	Content string
	SentAt  time.Time
}

// Encode encodes the message into bytes using protobuf
func (m *Message) Encode() ([]byte, error) {
	st, err := m.toStruct()
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	data, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}

// Decode decodes bytes into a message using protobuf
func (m *Message) Decode(data []byte) error {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return m.fromStruct(st)
}

func (m *Message) toStruct() (*structpb.Struct, error) {
	fields := map[string]any{
		fieldType:    m.Type.String(),
		fieldSender:  m.Sender,
		fieldContent: m.Content,
	}
	if !m.SentAt.IsZero() {
		fields[fieldSentAt] = m.SentAt.UTC().Format(time.RFC3339Nano)
	}
	return structpb.NewStruct(fields)
}

func (m *Message) fromStruct(st *structpb.Struct) error {
	f := st.GetFields()
	typ, ok := f[fieldType]
	if !ok {
		return ErrNotEnvelope
	}

	m.Type = parseMessageType(typ.GetStringValue())
	m.Sender = f[fieldSender].GetStringValue()
	m.Content = f[fieldContent].GetStringValue()
	m.SentAt = time.Time{}
	if raw := f[fieldSentAt].GetStringValue(); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("failed to decode message: sent_at: %w", err)
		}
		m.SentAt = ts
	}
	return nil
}
