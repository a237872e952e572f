// Package relay pairs two connections under a room code and forwards
// messages between them.
package relay

// Role is the fixed identity a connection declares when it joins a room.
type Role int

const (
	Initiator Role = iota
	Responder

	numRoles = 2
)

// Role tokens accepted in the join query string.
const (
	InitiatorToken = "sender"
	ResponderToken = "receiver"
)

// ParseRole maps a query-string token to a Role. Tokens are case-sensitive.
func ParseRole(token string) (Role, error) {
	switch token {
	case InitiatorToken:
		return Initiator, nil
	case ResponderToken:
		return Responder, nil
	default:
		return 0, ErrInvalidRole
	}
}

// Peer returns the opposite role.
func (r Role) Peer() Role {
	if r == Initiator {
		return Responder
	}
	return Initiator
}

// String returns the wire token for the role.
func (r Role) String() string {
	switch r {
	case Initiator:
		return InitiatorToken
	case Responder:
		return ResponderToken
	default:
		return "unknown"
	}
}

func (r Role) valid() bool {
	return r == Initiator || r == Responder
}
