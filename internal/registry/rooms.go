package registry

import (
	"fmt"
	"sync"

	"github.com/Bappoz/Rustatui-Chat/internal/domain"
)

// GeneralRoom is the room every client lands in after registration. It is
// created at construction and can never be deleted.
const GeneralRoom = "general"

type room struct {
	name     string
	password string // empty means open
	owner    string
	members  []string // insertion order, no duplicates
}

func (r *room) protected() bool {
	return r.password != ""
}

func (r *room) addMember(addr string) {
	for _, m := range r.members {
		if m == addr {
			return
		}
	}
	r.members = append(r.members, addr)
}

func (r *room) removeMember(addr string) {
	for i, m := range r.members {
		if m == addr {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return
		}
	}
}

func (r *room) hasMember(addr string) bool {
	for _, m := range r.members {
		if m == addr {
			return true
		}
	}
	return false
}

// RoomSummary is one entry of a List snapshot.
type RoomSummary struct {
	Name      string
	Members   int
	Protected bool
}

// Rooms is the concurrent registry of chat rooms. All operations are safe
// for concurrent callers; a single RWMutex guards the whole map.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

// NewRooms creates the registry with the permanent general room.
func NewRooms() *Rooms {
	r := &Rooms{rooms: make(map[string]*room)}
	r.rooms[GeneralRoom] = &room{name: GeneralRoom, owner: domain.SystemAddr}
	return r
}

// Create adds a new room owned by owner. Password may be empty for an
// open room.
func (r *Rooms) Create(name, password, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rooms[name]; exists {
		return fmt.Errorf("room %q: %w", name, ErrRoomExists)
	}
	r.rooms[name] = &room{name: name, password: password, owner: owner}
	return nil
}

// Join adds addr to the named room. Joining a room one is already a
// member of is a no-op. A protected room rejects a missing or wrong
// password.
func (r *Rooms) Join(name, addr, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, exists := r.rooms[name]
	if !exists {
		return fmt.Errorf("room %q: %w", name, ErrRoomNotFound)
	}
	if rm.protected() && password != rm.password {
		return fmt.Errorf("room %q: %w", name, ErrBadPassword)
	}
	rm.addMember(addr)
	return nil
}

// Leave removes addr from the named room. Missing room or membership is
// a no-op.
func (r *Rooms) Leave(name, addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, exists := r.rooms[name]; exists {
		rm.removeMember(addr)
	}
}

// MembersOf returns the member addresses of a room in join order, empty
// when the room does not exist.
func (r *Rooms) MembersOf(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, exists := r.rooms[name]
	if !exists {
		return nil
	}
	out := make([]string, len(rm.members))
	copy(out, rm.members)
	return out
}

// List snapshots all rooms. Iteration order is not stable across calls.
func (r *Rooms) List() []RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomSummary, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, RoomSummary{
			Name:      rm.name,
			Members:   len(rm.members),
			Protected: rm.protected(),
		})
	}
	return out
}

// RoomOf returns the room addr currently belongs to. Callers keep each
// address in at most one room, so the first match is the only one.
func (r *Rooms) RoomOf(addr string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, rm := range r.rooms {
		if rm.hasMember(addr) {
			return name, true
		}
	}
	return "", false
}

// Info returns the owner and password of a room.
func (r *Rooms) Info(name string) (owner, password string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, exists := r.rooms[name]
	if !exists {
		return "", "", false
	}
	return rm.owner, rm.password, true
}

// Delete removes a room. Only the owner may delete it and the general
// room is never deleted. Members are not removed here; the caller decides
// how to notify or migrate them.
func (r *Rooms) Delete(name, requester string) error {
	if name == GeneralRoom {
		return fmt.Errorf("room %q: %w", name, ErrProtectedRoom)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, exists := r.rooms[name]
	if !exists {
		return fmt.Errorf("room %q: %w", name, ErrRoomNotFound)
	}
	if rm.owner != requester {
		return fmt.Errorf("room %q: %w", name, ErrNotOwner)
	}
	delete(r.rooms, name)
	return nil
}
