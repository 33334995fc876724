package core

import (
	"sync"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

// RoomRegistry maps canonical channel names to rooms. The registry lock only
// covers the name table; room state has its own per-room lock so one busy
// room cannot starve unrelated traffic.
type RoomRegistry struct {
	mu    sync.Mutex
	rooms map[proto.CanonicalKey]*Room
}

// NewRoomRegistry returns an empty room registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[proto.CanonicalKey]*Room)}
}

// GetOrCreate returns the room for name, creating it if absent. The display
// name is fixed by whoever names the room first.
func (rr *RoomRegistry) GetOrCreate(name string) *Room {
	key := proto.Fold(name)
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if r, ok := rr.rooms[key]; ok {
		return r
	}
	r := newRoom(name)
	rr.rooms[key] = r
	return r
}

// Get returns the room for name, or nil.
func (rr *RoomRegistry) Get(name string) *Room {
	key := proto.Fold(name)
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.rooms[key]
}

// Dispose removes the room if it is still disposable. Rechecking under the
// registry lock closes the race against a join that happened after the
// caller observed the room empty.
func (rr *RoomRegistry) Dispose(r *Room) {
	rr.mu.Lock()
	if existing, ok := rr.rooms[r.key]; ok && existing == r && r.Disposable() {
		delete(rr.rooms, r.key)
	}
	rr.mu.Unlock()
}

// All snapshots the current rooms.
func (rr *RoomRegistry) All() []*Room {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	out := make([]*Room, 0, len(rr.rooms))
	for _, r := range rr.rooms {
		out = append(out, r)
	}
	return out
}

// Count returns the number of rooms.
func (rr *RoomRegistry) Count() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return len(rr.rooms)
}
