package core

import (
	"encoding/json"

	"github.com/avelis/pulse/internal/domain"
)

// Outbound event envelopes. Each carries its own "type" discriminator so a
// client can dispatch on a single field; payload schemas are fixed here
// rather than assembled ad hoc at call sites.

const (
	EventMessage        = "message"
	EventMessageDeleted = "message_deleted"
	EventUserStatus     = "user_status"
	EventUnreadCount    = "unread_count_update"
	EventSignaling      = "signaling"
	EventRoomJoined     = "room_joined"
	EventMemberJoined   = "member_joined"
	EventMemberLeft     = "member_left"
	EventError          = "error"
	EventPong           = "pong"
)

type UserStatusEvent struct {
	Type   string            `json:"type"`
	Status domain.UserStatus `json:"status"`
}

type UnreadCountEvent struct {
	Type        string        `json:"type"`
	RoomID      domain.RoomID `json:"roomId"`
	UnreadCount int           `json:"unreadCount"`
}

type MessageDeletedEvent struct {
	Type    string          `json:"type"`
	RoomID  domain.RoomID   `json:"roomId"`
	Message *domain.Message `json:"message"`
}

// SignalEvent is the forwarded call-setup envelope. Payload is opaque to the
// relay; only the receiving peer interprets it.
type SignalEvent struct {
	Type    string          `json:"type"`
	UserID  domain.UserID   `json:"userId"`
	Signal  string          `json:"signal"`
	Payload json.RawMessage `json:"payload"`
}

type RoomJoinedEvent struct {
	Type    string          `json:"type"`
	RoomID  domain.RoomID   `json:"roomId"`
	Members []domain.UserID `json:"members"`
}

type MemberEvent struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.UserID `json:"userId"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type PongEvent struct {
	Type string `json:"type"`
}
