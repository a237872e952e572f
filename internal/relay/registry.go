package relay

import (
	"sync"

	"go.uber.org/zap"
)

// slot holds the writer for one role. owned stays true while the writer is
// detached for a send, so a detached slot still counts as occupied.
type slot struct {
	w        Writer
	owned    bool
	detached bool
}

func (s *slot) fill(w Writer) {
	*s = slot{w: w, owned: true}
}

func (s *slot) take() (Writer, bool) {
	if !s.owned || s.detached || s.w == nil {
		return nil, false
	}
	w := s.w
	s.w = nil
	s.detached = true
	return w, true
}

// restore puts w back only if the same owner is still waiting for it.
// A slot that was vacated (or vacated and refilled) during the send is left alone.
func (s *slot) restore(w Writer) bool {
	if !s.owned || !s.detached {
		return false
	}
	s.w = w
	s.detached = false
	return true
}

func (s *slot) clear() {
	*s = slot{}
}

type room struct {
	code  string
	slots [numRoles]slot
}

func (r *room) isComplete() bool {
	return r.slots[Initiator].owned && r.slots[Responder].owned
}

func (r *room) isEmpty() bool {
	return !r.slots[Initiator].owned && !r.slots[Responder].owned
}

// Registry maps room codes to rooms. Every method holds the lock only for the
// map and slot update and never across I/O.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room
	log   *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		rooms: make(map[string]*room),
		log:   log,
	}
}

// Join stores w in role's slot of the room for code, creating the room if it
// does not exist. It returns ErrRoleConflict, leaving the room untouched, when
// the slot is already held. complete reports whether both roles are now held.
func (g *Registry) Join(code string, role Role, w Writer) (complete bool, err error) {
	if code == "" {
		return false, ErrMissingJoinParameters
	}
	if !role.valid() {
		return false, ErrInvalidRole
	}

	g.mu.Lock()
	r, exists := g.rooms[code]
	if exists && r.slots[role].owned {
		g.mu.Unlock()
		return false, ErrRoleConflict
	}
	if !exists {
		r = &room{code: code}
		g.rooms[code] = r
	}
	r.slots[role].fill(w)
	complete = r.isComplete()
	g.mu.Unlock()

	if !exists {
		gaugeRoomsActive.Inc()
		g.log.Debug("room created", zap.String("room", code))
	}
	return complete, nil
}

// IsComplete reports whether both roles are held. A missing room is incomplete.
func (g *Registry) IsComplete(code string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[code]
	return ok && r.isComplete()
}

// TakeWriter detaches and returns the writer held for role. The slot stays
// occupied but has no writer until ReturnWriter. ok is false when the room,
// the role or the writer is absent.
func (g *Registry) TakeWriter(code string, role Role) (w Writer, ok bool) {
	if !role.valid() {
		return nil, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	r, exists := g.rooms[code]
	if !exists {
		return nil, false
	}
	return r.slots[role].take()
}

// ReturnWriter reattaches a writer obtained from TakeWriter. It reports false
// when the writer was dropped because its owner left while it was detached.
func (g *Registry) ReturnWriter(code string, role Role, w Writer) bool {
	if !role.valid() {
		return false
	}

	g.mu.Lock()
	r, exists := g.rooms[code]
	restored := exists && r.slots[role].restore(w)
	g.mu.Unlock()

	if !restored {
		metricWritersDiscarded.Inc()
		g.log.Debug("writer discarded",
			zap.String("room", code),
			zap.Stringer("role", role),
			zap.Bool("room_exists", exists))
	}
	return restored
}

// Leave clears role's slot and removes the room once both slots are empty.
// It is safe to call more than once.
func (g *Registry) Leave(code string, role Role) {
	if !role.valid() {
		return
	}

	g.mu.Lock()
	r, exists := g.rooms[code]
	if !exists {
		g.mu.Unlock()
		return
	}
	r.slots[role].clear()
	removed := r.isEmpty()
	if removed {
		delete(g.rooms, code)
	}
	g.mu.Unlock()

	if removed {
		gaugeRoomsActive.Dec()
		g.log.Debug("room removed", zap.String("room", code))
	}
}

// Occupancy reports which roles are held in the room for code.
func (g *Registry) Occupancy(code string) (initiator, responder, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, exists := g.rooms[code]
	if !exists {
		return false, false, false
	}
	return r.slots[Initiator].owned, r.slots[Responder].owned, true
}

// RoomCount returns the number of live rooms.
func (g *Registry) RoomCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}
