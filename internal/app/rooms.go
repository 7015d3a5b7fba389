package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avelis/pulse/internal/core"
	"github.com/avelis/pulse/internal/domain"
)

// OwnerResolver maps a connection back to its user, for de-duplicating
// room membership. Registry satisfies it.
type OwnerResolver interface {
	Owner(core.ConnID) (domain.UserID, bool)
}

// PublishResult reports delivery stats and backpressure to the caller.
type PublishResult struct {
	SentTo  int
	Dropped []core.SignalConnection
}

// Rooms is the broadcast-group primitive: roomID -> set of live connections.
// It owns membership sets but never closes adapter-owned connections.
type Rooms struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomID]map[core.ConnID]core.SignalConnection
	joined   map[core.ConnID]map[domain.RoomID]struct{}
	resolver OwnerResolver
}

func NewRooms(resolver OwnerResolver) *Rooms {
	return &Rooms{
		rooms:    make(map[domain.RoomID]map[core.ConnID]core.SignalConnection),
		joined:   make(map[core.ConnID]map[domain.RoomID]struct{}),
		resolver: resolver,
	}
}

// Join adds conn to the room's broadcast set. Idempotent.
func (r *Rooms) Join(conn core.SignalConnection, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.rooms[roomID]
	if !ok {
		set = make(map[core.ConnID]core.SignalConnection)
		r.rooms[roomID] = set
	}
	if _, ok := set[conn.ID()]; ok {
		return
	}
	set[conn.ID()] = conn

	rs, ok := r.joined[conn.ID()]
	if !ok {
		rs = make(map[domain.RoomID]struct{})
		r.joined[conn.ID()] = rs
	}
	rs[roomID] = struct{}{}
	log.Info().Str("module", "app.rooms").Str("conn", string(conn.ID())).Str("room", string(roomID)).Int("members", len(set)).Msg("joined room")
}

// Leave removes conn from the room's broadcast set. No-op if not a member.
// Empty sets are dropped so idle rooms do not accumulate.
func (r *Rooms) Leave(id core.ConnID, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(id, roomID)
}

// LeaveAll removes conn from every room it joined and returns those rooms,
// so disconnect handling can announce departures.
func (r *Rooms) LeaveAll(id core.ConnID) []domain.RoomID {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.RoomID, 0, len(r.joined[id]))
	for roomID := range r.joined[id] {
		out = append(out, roomID)
	}
	for _, roomID := range out {
		r.leaveLocked(id, roomID)
	}
	return out
}

func (r *Rooms) leaveLocked(id core.ConnID, roomID domain.RoomID) {
	set, ok := r.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := set[id]; !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(r.rooms, roomID)
	}
	if rs, ok := r.joined[id]; ok {
		delete(rs, roomID)
		if len(rs) == 0 {
			delete(r.joined, id)
		}
	}
	log.Info().Str("module", "app.rooms").Str("conn", string(id)).Str("room", string(roomID)).Msg("left room")
}

// RoomsOf returns the rooms a connection is currently joined to.
func (r *Rooms) RoomsOf(id core.ConnID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(r.joined[id]))
	for roomID := range r.joined[id] {
		out = append(out, roomID)
	}
	return out
}

// Members resolves every connection in the room to its owning user,
// de-duplicated: a user with two tabs open counts once.
func (r *Rooms) Members(roomID domain.RoomID) []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[domain.UserID]struct{})
	out := make([]domain.UserID, 0, len(r.rooms[roomID]))
	for id := range r.rooms[roomID] {
		uid, ok := r.resolver.Owner(id)
		if !ok {
			continue
		}
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		out = append(out, uid)
	}
	return out
}

// Broadcast fans a frame out to every connection joined to the room.
// Connections whose send buffer is full are reported, not retried.
func (r *Rooms) Broadcast(roomID domain.RoomID, data core.Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := PublishResult{}
	for _, c := range r.rooms[roomID] {
		if err := c.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, c)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "app.rooms").Str("room", string(roomID)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
