package protocol_test

import (
	"errors"
	"testing"
	"time"

	"github.com/DeepanKumar2553/neoshare/pkg/protocol"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestMessage_Encode(t *testing.T) {
	tests := []struct {
		name    string
		msg     protocol.Message
		wantErr bool
	}{
		{
			name: "encode text message successfully",
			msg: protocol.Message{
				Type:    protocol.MessageTypeText,
				Sender:  "user1",
				Content: "Hello, World!",
			},
		},
		{
			name: "encode join message successfully",
			msg: protocol.Message{
				Type:   protocol.MessageTypeJoin,
				Sender: "user2",
			},
		},
		{
			name: "encode leave message with timestamp",
			msg: protocol.Message{
				Type:   protocol.MessageTypeLeave,
				Sender: "user3",
				SentAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.msg.Encode()
			if (err != nil) != tt.wantErr {
				t.Errorf("Message.Encode() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && len(data) == 0 {
				t.Error("Message.Encode() returned empty data")
			}
		})
	}
}

func TestMessage_Decode(t *testing.T) {
	sentAt := time.Date(2024, 5, 1, 12, 30, 15, 500, time.UTC)
	original := protocol.Message{
		Type:    protocol.MessageTypeJoin,
		Sender:  "alice",
		Content: "hi there",
		SentAt:  sentAt,
	}
	data, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var got protocol.Message
	if err := got.Decode(data); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Type != original.Type || got.Sender != original.Sender || got.Content != original.Content {
		t.Errorf("Decode() = %+v, want %+v", got, original)
	}
	if !got.SentAt.Equal(sentAt) {
		t.Errorf("Decode() SentAt = %v, want %v", got.SentAt, sentAt)
	}
}

func TestMessage_Decode_UnknownTypeIsText(t *testing.T) {
	st, err := structpb.NewStruct(map[string]any{
		"type":    "REACTION",
		"sender":  "bob",
		"content": "+1",
	})
	if err != nil {
		t.Fatalf("NewStruct() error = %v", err)
	}
	data, err := proto.Marshal(st)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got protocol.Message
	if err := got.Decode(data); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Type != protocol.MessageTypeText {
		t.Errorf("Decode() Type = %v, want %v", got.Type, protocol.MessageTypeText)
	}
	if got.Content != "+1" {
		t.Errorf("Decode() Content = %q, want %q", got.Content, "+1")
	}
}

func TestMessage_Decode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "empty payload",
			data:    []byte{},
			wantErr: protocol.ErrNotEnvelope,
		},
		{
			name: "invalid protobuf",
			data: []byte{0xff, 0xff, 0xff},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg protocol.Message
			err := msg.Decode(tt.data)
			if err == nil {
				t.Fatal("Message.Decode() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Message.Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessageType_String(t *testing.T) {
	tests := []struct {
		name string
		mt   protocol.MessageType
		want string
	}{
		{name: "text", mt: protocol.MessageTypeText, want: "TEXT"},
		{name: "join", mt: protocol.MessageTypeJoin, want: "JOIN"},
		{name: "leave", mt: protocol.MessageTypeLeave, want: "LEAVE"},
		{name: "unknown", mt: protocol.MessageType(99), want: "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mt.String(); got != tt.want {
				t.Errorf("MessageType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}
