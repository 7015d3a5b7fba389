package app

import (
	"github.com/rs/zerolog/log"

	"github.com/avelis/pulse/internal/core"
	"github.com/avelis/pulse/internal/domain"
)

// Join adds the connection to the room's broadcast group, confirms to the
// joining connection with the current member list and announces the member
// to the room.
func (s *Service) Join(conn core.SignalConnection, roomID domain.RoomID) {
	uid, ok := s.Registry.Owner(conn.ID())
	if !ok {
		log.Warn().Str("module", "app.service").Str("conn", string(conn.ID())).Msg("join from unregistered connection")
		return
	}
	s.Rooms.Join(conn, roomID)
	s.sendTo(conn, core.RoomJoinedEvent{
		Type:    core.EventRoomJoined,
		RoomID:  roomID,
		Members: s.Rooms.Members(roomID),
	})
	s.broadcastRoom(roomID, core.MemberEvent{Type: core.EventMemberJoined, RoomID: roomID, UserID: uid})
}

// Leave removes the connection from the room. No-op if it never joined.
func (s *Service) Leave(conn core.SignalConnection, roomID domain.RoomID) {
	s.Rooms.Leave(conn.ID(), roomID)
	if uid, ok := s.Registry.Owner(conn.ID()); ok {
		s.broadcastRoom(roomID, core.MemberEvent{Type: core.EventMemberLeft, RoomID: roomID, UserID: uid})
	}
}

// SetTyping flips the user's typing flag and republishes their status to the
// given room only. Online/offline transitions go process-wide; typing is
// room-scoped noise.
func (s *Service) SetTyping(conn core.SignalConnection, roomID domain.RoomID, typing bool) {
	uid, ok := s.Registry.Owner(conn.ID())
	if !ok {
		return
	}
	status, ok := s.Registry.SetTyping(uid, typing)
	if !ok {
		return
	}
	s.broadcastRoom(roomID, core.UserStatusEvent{Type: core.EventUserStatus, Status: status})
}
