package relay_test

import (
	"errors"
	"testing"

	"github.com/DeepanKumar2553/neoshare/internal/relay"
)

func TestParseJoinRequest(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want relay.JoinRequest
	}{
		{
			name: "both parameters",
			uri:  "/?room=abc&role=sender",
			want: relay.JoinRequest{Room: "abc", Role: "sender"},
		},
		{
			name: "any path",
			uri:  "/ws?role=receiver&room=12345678",
			want: relay.JoinRequest{Room: "12345678", Role: "receiver"},
		},
		{
			name: "escaped room",
			uri:  "/?room=a%20b&role=sender",
			want: relay.JoinRequest{Room: "a b", Role: "sender"},
		},
		{
			name: "missing role",
			uri:  "/?room=abc",
			want: relay.JoinRequest{Room: "abc"},
		},
		{
			name: "no query",
			uri:  "/",
			want: relay.JoinRequest{},
		},
		{
			name: "empty values",
			uri:  "/?room=&role=",
			want: relay.JoinRequest{},
		},
		{
			name: "not a request uri",
			uri:  "room=abc",
			want: relay.JoinRequest{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relay.ParseJoinRequest(tt.uri); got != tt.want {
				t.Errorf("ParseJoinRequest(%q) = %+v, want %+v", tt.uri, got, tt.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		token   string
		want    relay.Role
		wantErr error
	}{
		{token: "sender", want: relay.Initiator},
		{token: "receiver", want: relay.Responder},
		{token: "SENDER", wantErr: relay.ErrInvalidRole},
		{token: "observer", wantErr: relay.ErrInvalidRole},
		{token: "", wantErr: relay.ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := relay.ParseRole(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseRole(%q) error = %v, want %v", tt.token, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseRole(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestRole_Peer(t *testing.T) {
	if got := relay.Initiator.Peer(); got != relay.Responder {
		t.Errorf("Initiator.Peer() = %v, want %v", got, relay.Responder)
	}
	if got := relay.Responder.Peer(); got != relay.Initiator {
		t.Errorf("Responder.Peer() = %v, want %v", got, relay.Initiator)
	}
}

func TestRole_String(t *testing.T) {
	tests := []struct {
		role relay.Role
		want string
	}{
		{relay.Initiator, "sender"},
		{relay.Responder, "receiver"},
		{relay.Role(5), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.role.String(); got != tt.want {
			t.Errorf("Role(%d).String() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestFrame_IsData(t *testing.T) {
	tests := []struct {
		frame relay.Frame
		want  bool
	}{
		{relay.TextFrame("x"), true},
		{relay.BinaryFrame([]byte{1}), true},
		{relay.Frame{Kind: relay.FrameClose}, false},
		{relay.Frame{Kind: relay.FrameControl}, false},
	}

	for _, tt := range tests {
		if got := tt.frame.IsData(); got != tt.want {
			t.Errorf("%v IsData() = %v, want %v", tt.frame.Kind, got, tt.want)
		}
	}
}
