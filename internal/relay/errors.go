package relay

import "errors"

var (
	// ErrMissingJoinParameters is returned when the room or role is absent or empty.
	ErrMissingJoinParameters = errors.New("relay: missing room or role")

	// ErrInvalidRole is returned when the role token is not recognized.
	ErrInvalidRole = errors.New("relay: invalid role")

	// ErrRoleConflict is returned when the requested role is already held in the room.
	ErrRoleConflict = errors.New("relay: role already taken")

	// ErrPeerUnavailable is returned by Forward when the target slot is empty.
	// It is not fatal to the relay loop.
	ErrPeerUnavailable = errors.New("relay: peer not connected")

	// ErrSendFailure wraps the error from a failed send to the peer.
	ErrSendFailure = errors.New("relay: send to peer failed")

	// ErrReadFailure wraps a non-EOF error from the local connection.
	ErrReadFailure = errors.New("relay: read failed")
)
