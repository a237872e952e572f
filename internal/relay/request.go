package relay

import "net/url"

// Query-string keys read from the upgrade request.
const (
	QueryRoom = "room"
	QueryRole = "role"
)

// JoinRequest carries the raw join parameters taken from the upgrade request.
// It is validated when the connection starts joining.
type JoinRequest struct {
	Room string
	Role string
}

// ParseJoinRequest extracts room and role from a request URI such as
// "/?room=abc&role=sender". Unparseable URIs yield an empty request.
func ParseJoinRequest(uri string) JoinRequest {
	u, err := url.ParseRequestURI(uri)
	if err != nil {
		return JoinRequest{}
	}
	q := u.Query()
	return JoinRequest{
		Room: q.Get(QueryRoom),
		Role: q.Get(QueryRole),
	}
}

func (r JoinRequest) validate() (Role, error) {
	if r.Room == "" || r.Role == "" {
		return 0, ErrMissingJoinParameters
	}
	return ParseRole(r.Role)
}
