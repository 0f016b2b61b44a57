package hub

import "github.com/google/uuid"

// Rooms returns room identifiers with their current member counts.
func (r *Registry) Rooms() map[uuid.UUID]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[uuid.UUID]int, len(r.rooms))
	for id, members := range r.rooms {
		result[id] = len(members)
	}
	return result
}

// RoomCount returns the number of rooms with at least one connection.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// ClientCount returns the total number of registered connections.
func (r *Registry) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, members := range r.rooms {
		total += len(members)
	}
	return total
}
