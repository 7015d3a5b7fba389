package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avelis/pulse/internal/core"
	"github.com/avelis/pulse/internal/domain"
)

// Registry maps a user to the set of live connections that user holds open
// and keeps the in-memory presence record per user.
type Registry struct {
	mu     sync.RWMutex
	conns  map[domain.UserID]map[core.ConnID]core.SignalConnection
	owner  map[core.ConnID]domain.UserID
	users  map[domain.UserID]*domain.User
	status map[domain.UserID]*domain.UserStatus
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[domain.UserID]map[core.ConnID]core.SignalConnection),
		owner:  make(map[core.ConnID]domain.UserID),
		users:  make(map[domain.UserID]*domain.User),
		status: make(map[domain.UserID]*domain.UserStatus),
	}
}

// Register adds conn to the user's set, creating it if absent, and marks the
// user online. The returned status snapshot is what the presence broadcaster
// publishes.
func (r *Registry) Register(conn core.SignalConnection, user *domain.User) domain.UserStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[user.ID]
	if !ok {
		set = make(map[core.ConnID]core.SignalConnection)
		r.conns[user.ID] = set
	}
	set[conn.ID()] = conn
	r.owner[conn.ID()] = user.ID
	r.users[user.ID] = user

	st, ok := r.status[user.ID]
	if !ok {
		st = &domain.UserStatus{UserID: user.ID}
		r.status[user.ID] = st
	}
	st.Presence = domain.PresenceOnline
	st.LastSeen = time.Now()
	st.IsTyping = false
	st.InCall = false

	log.Info().Str("module", "app.registry").Str("user", string(user.ID)).Str("conn", string(conn.ID())).Int("conns", len(set)).Msg("registered connection")
	return *st
}

// Deregister removes conn from its owner's set. When the set becomes empty
// the user goes offline; the second return reports that transition so the
// caller knows whether to publish.
func (r *Registry) Deregister(conn core.SignalConnection) (domain.UserStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	uid, ok := r.owner[conn.ID()]
	if !ok {
		return domain.UserStatus{}, false
	}
	delete(r.owner, conn.ID())

	set := r.conns[uid]
	delete(set, conn.ID())
	if len(set) > 0 {
		log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", string(conn.ID())).Int("conns", len(set)).Msg("deregistered connection")
		return domain.UserStatus{}, false
	}
	delete(r.conns, uid)

	st := r.status[uid]
	st.Presence = domain.PresenceOffline
	st.LastSeen = time.Now()
	st.IsTyping = false
	st.InCall = false

	log.Info().Str("module", "app.registry").Str("user", string(uid)).Msg("user offline")
	return *st, true
}

// Owner resolves a connection back to its user. False when the connection
// was never registered or already deregistered.
func (r *Registry) Owner(id core.ConnID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uid, ok := r.owner[id]
	return uid, ok
}

// UserOf returns the display identity captured at register time.
func (r *Registry) UserOf(uid domain.UserID) (*domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[uid]
	return u, ok
}

// ConnsOf snapshots the user's live connections for private delivery.
func (r *Registry) ConnsOf(uid domain.UserID) []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.conns[uid]
	out := make([]core.SignalConnection, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// AllConns snapshots every live connection, for process-wide broadcast.
func (r *Registry) AllConns() []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SignalConnection, 0, len(r.owner))
	for _, set := range r.conns {
		for _, c := range set {
			out = append(out, c)
		}
	}
	return out
}

// Status returns a copy of the user's presence record. A user never seen by
// this process reports offline.
func (r *Registry) Status(uid domain.UserID) domain.UserStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.status[uid]; ok {
		return *st
	}
	return domain.UserStatus{UserID: uid, Presence: domain.PresenceOffline}
}

// SetTyping flips the typing flag and returns the updated status snapshot.
func (r *Registry) SetTyping(uid domain.UserID, typing bool) (domain.UserStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.status[uid]
	if !ok {
		return domain.UserStatus{}, false
	}
	st.IsTyping = typing
	return *st, true
}
