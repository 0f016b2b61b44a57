package hub

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry is the single source of truth for which connections are
// listening on which chat room. Rooms have no independent lifecycle: an
// entry appears with its first client and disappears with its last.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[*Client]struct{}
	logger zerolog.Logger
}

// NewRegistry creates an empty connection registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[uuid.UUID]map[*Client]struct{}),
		logger: logger.With().Str("component", "registry").Logger(),
	}
}

// Admit inserts the client into the room's membership. Safe to call
// concurrently with Admit/Remove/Snapshot on any room.
func (r *Registry) Admit(chatID uuid.UUID, c *Client) {
	r.mu.Lock()
	members := r.rooms[chatID]
	if members == nil {
		members = make(map[*Client]struct{})
		r.rooms[chatID] = members
	}
	members[c] = struct{}{}
	total := len(members)
	r.mu.Unlock()

	r.logger.Info().
		Str("client_id", c.ID).
		Str("chat_id", chatID.String()).
		Int("room_size", total).
		Msg("client admitted")
}

// Remove deletes the client from the room's membership and reports
// whether it was present. Removing an absent client is a no-op, so the
// read-loop cleanup and the dispatcher failure path may both call it.
// The room entry itself is dropped once its last member leaves.
func (r *Registry) Remove(chatID uuid.UUID, c *Client) bool {
	r.mu.Lock()
	members, ok := r.rooms[chatID]
	if !ok {
		r.mu.Unlock()
		return false
	}
	if _, present := members[c]; !present {
		r.mu.Unlock()
		return false
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, chatID)
	}
	remaining := len(members)
	r.mu.Unlock()

	r.logger.Info().
		Str("client_id", c.ID).
		Str("chat_id", chatID.String()).
		Int("room_size", remaining).
		Msg("client removed")
	return true
}

// Snapshot returns a point-in-time copy of the room's members. The
// returned slice never aliases internal state, so iterating it is
// unaffected by concurrent Admit/Remove. Unknown rooms yield an empty
// slice.
func (r *Registry) Snapshot(chatID uuid.UUID) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[chatID]
	snapshot := make([]*Client, 0, len(members))
	for c := range members {
		snapshot = append(snapshot, c)
	}
	return snapshot
}
