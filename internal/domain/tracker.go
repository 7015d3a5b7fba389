package domain

import "time"

// MessageTracker counts messages a user has not read in a room.
// Created lazily on first increment; in memory only, so a restart loses
// counts (they are a UX convenience, not authoritative).
type MessageTracker struct {
	RoomID            RoomID    `json:"roomId"`
	UserID            UserID    `json:"userId"`
	UnreadCount       int       `json:"unreadCount"`
	LastReadTimestamp time.Time `json:"lastReadTimestamp"`
}
