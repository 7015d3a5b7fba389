package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avelis/pulse/internal/core"
	"github.com/avelis/pulse/internal/domain"
)

// Service wires the realtime core together: registry, rooms, unread
// tracking, the message relay and the signaling relay. Construct one per
// process and hand it to the transport adapter; there is no hidden
// singleton, so tests can run isolated instances.
type Service struct {
	Registry *Registry
	Rooms    *Rooms
	Tracker  *Tracker
	Store    core.Store
	Policy   Policy
}

func NewService(store core.Store) *Service {
	reg := NewRegistry()
	return &Service{
		Registry: reg,
		Rooms:    NewRooms(reg),
		Tracker:  NewTracker(),
		Store:    store,
		Policy:   SimplePolicy{},
	}
}

// Connect registers an authenticated connection and publishes the user's
// online status process-wide. Identity verification already happened in the
// adapter; an unverified connection never reaches this point.
func (s *Service) Connect(conn core.SignalConnection, user *domain.User) {
	status := s.Registry.Register(conn, user)
	s.broadcastAll(core.UserStatusEvent{Type: core.EventUserStatus, Status: status})
}

// Disconnect removes the connection from all rooms and the registry. If it
// was the user's last live connection the offline transition is published.
func (s *Service) Disconnect(conn core.SignalConnection) {
	for _, roomID := range s.Rooms.LeaveAll(conn.ID()) {
		if uid, ok := s.Registry.Owner(conn.ID()); ok {
			s.broadcastRoom(roomID, core.MemberEvent{Type: core.EventMemberLeft, RoomID: roomID, UserID: uid})
		}
	}
	status, wentOffline := s.Registry.Deregister(conn)
	if wentOffline {
		s.broadcastAll(core.UserStatusEvent{Type: core.EventUserStatus, Status: status})
	}
}

func (s *Service) marshal(v any) (core.Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.service").Msg("marshal event")
		return nil, false
	}
	return b, true
}

func (s *Service) sendTo(conn core.SignalConnection, v any) {
	data, ok := s.marshal(v)
	if !ok {
		return
	}
	if err := conn.TrySend(data); err != nil {
		log.Warn().Err(err).Str("module", "app.service").Str("conn", string(conn.ID())).Msg("private send dropped")
	}
}

// sendToUser delivers privately to every connection the user owns, so all
// open tabs converge on the same state.
func (s *Service) sendToUser(uid domain.UserID, v any) {
	data, ok := s.marshal(v)
	if !ok {
		return
	}
	for _, c := range s.Registry.ConnsOf(uid) {
		if err := c.TrySend(data); err != nil {
			log.Warn().Err(err).Str("module", "app.service").Str("user", string(uid)).Msg("private send dropped")
		}
	}
}

func (s *Service) broadcastAll(v any) {
	data, ok := s.marshal(v)
	if !ok {
		return
	}
	for _, c := range s.Registry.AllConns() {
		_ = c.TrySend(data)
	}
}

func (s *Service) broadcastRoom(roomID domain.RoomID, v any) {
	data, ok := s.marshal(v)
	if !ok {
		return
	}
	res := s.Rooms.Broadcast(roomID, data)
	if s.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch s.Policy.OnBackpressure(string(roomID), slow) {
		case KickConn:
			s.Disconnect(slow)
			slow.Close()
		case DropFrame, NoAction:
		}
	}
}
