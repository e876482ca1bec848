package core

import "sync"

// SessionRegistry is the bounded, slot-indexed session registry
// (spec.md §3/§4.5), sized config.Config.MaxClients and mirroring
// original_source/Server/server.h's Client clients[MAX_CLIENTS].
//
// The registry lock ("short held", spec.md §3) guards slot allocation
// and the id→slot index only; per-session locks guard mutable
// content. The registry lock is held only inside these methods and is
// never held while another lock is acquired, so callers may take it
// while already holding a room or session lock (Room.Join does).
type SessionRegistry struct {
	mu    sync.RWMutex
	slots []*Session
	byID  map[string]*Session
}

func NewSessionRegistry(maxClients int) *SessionRegistry {
	return &SessionRegistry{
		slots: make([]*Session, maxClients),
		byID:  make(map[string]*Session),
	}
}

// Add reserves the first free slot for s and returns its index, or -1
// if the registry is full.
func (reg *SessionRegistry) Add(s *Session) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for i, slot := range reg.slots {
		if slot == nil {
			reg.slots[i] = s
			s.slotIdx = i
			return i
		}
	}
	return -1
}

// Remove clears the slot at idx if it still holds s (idempotent
// against a session that has since been replaced in that slot).
func (reg *SessionRegistry) Remove(s *Session) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if s.slotIdx >= 0 && s.slotIdx < len(reg.slots) && reg.slots[s.slotIdx] == s {
		reg.slots[s.slotIdx] = nil
	}
	if s.ID != "" {
		if existing, ok := reg.byID[s.ID]; ok && existing == s {
			delete(reg.byID, s.ID)
		}
	}
}

// BindID registers s under its logged-in id, failing if the id is
// already taken by a different, still-live session.
func (reg *SessionRegistry) BindID(id string, s *Session) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if existing, ok := reg.byID[id]; ok && existing != s {
		return false
	}
	reg.byID[id] = s
	return true
}

// FindByID returns the session currently registered under id, or nil.
func (reg *SessionRegistry) FindByID(id string) *Session {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.byID[id]
}

// Snapshot returns a copy of every session bound to a logged-in id
// (anonymous sessions are not included), for the heartbeat sweep's
// snapshot-then-act pass (spec.md §4.6). Holding this
// slice beyond the call does not pin slot identity; callers must
// re-validate under the session's own lock.
func (reg *SessionRegistry) Snapshot() []*Session {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Session, 0, len(reg.byID))
	for _, s := range reg.byID {
		out = append(out, s)
	}
	return out
}

// RoomRegistry is the bounded room registry (spec.md §3/§4.4), sized
// config.Config.MaxRooms and mirroring server.h's Room rooms[MAX_ROOMS].
type RoomRegistry struct {
	mu    sync.RWMutex
	slots []*Room
	byName map[string]*Room
}

func NewRoomRegistry(maxRooms int) *RoomRegistry {
	return &RoomRegistry{
		slots:  make([]*Room, maxRooms),
		byName: make(map[string]*Room),
	}
}

// Create allocates a room slot for name, failing if a non-empty room
// by that name already exists or no slot is free (spec.md §4.4).
func (reg *RoomRegistry) Create(name, creator string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.byName[name]; exists {
		return nil, false
	}
	for i, slot := range reg.slots {
		if slot == nil {
			r := NewRoom(name, creator, i)
			reg.slots[i] = r
			reg.byName[name] = r
			return r, true
		}
	}
	return nil, false
}

// Find returns the room by name, or nil.
func (reg *RoomRegistry) Find(name string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.byName[name]
}

// Destroy frees r's slot and name binding.
func (reg *RoomRegistry) Destroy(r *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r.slotIdx >= 0 && r.slotIdx < len(reg.slots) && reg.slots[r.slotIdx] == r {
		reg.slots[r.slotIdx] = nil
	}
	if existing, ok := reg.byName[r.Name]; ok && existing == r {
		delete(reg.byName, r.Name)
	}
}

// ListEntry is one row of the non-empty rooms, slot index included per
// spec.md §4.8's ListRooms payload.
type ListEntry struct {
	SlotIdx int
	Name    string
	Players int
}

// ListNonEmpty returns every occupied room slot.
func (reg *RoomRegistry) ListNonEmpty() []ListEntry {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]ListEntry, 0, len(reg.byName))
	for i, r := range reg.slots {
		if r == nil {
			continue
		}
		out = append(out, ListEntry{SlotIdx: i, Name: r.Name, Players: r.PlayersCount})
	}
	return out
}

// Snapshot returns all live room pointers, for the heartbeat's paused-
// room sweep (spec.md §4.6 step 3).
func (reg *RoomRegistry) Snapshot() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Room, 0, len(reg.byName))
	for _, r := range reg.byName {
		out = append(out, r)
	}
	return out
}
