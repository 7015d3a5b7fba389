// Package domain contains entity types without logic, just meta-data.
package domain

import (
	"errors"
	"time"
)

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

// User is the display identity attached to a connection at handshake time.
type User struct {
	ID     UserID `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(id UserID, name, avatar string) (*User, error) {
	if len(name) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &User{ID: id, Name: name, Avatar: avatar}, nil
}

type Presence string

const (
	PresenceOnline  Presence = "online"
	PresenceOffline Presence = "offline"
	PresenceAway    Presence = "away"
)

// UserStatus is the published presence record for one user.
// Held in memory only; reset on process restart.
type UserStatus struct {
	UserID   UserID    `json:"userId"`
	Presence Presence  `json:"presence"`
	LastSeen time.Time `json:"lastSeen"`
	IsTyping bool      `json:"isTyping"`
	InCall   bool      `json:"inCall"`
}
