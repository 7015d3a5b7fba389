package domain

import "time"

const DocTypeMessage = "message"

type Attachment struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

type Reaction struct {
	Emoji  string `json:"emoji"`
	UserID UserID `json:"userId"`
}

// Message is the persisted chat document. ID and Timestamp are assigned by
// the server on create; SenderID and Timestamp never change afterwards, and
// IsDeleted is a one-way flag (soft delete only).
type Message struct {
	ID           string       `json:"_id"`
	Type         string       `json:"type"`
	RoomID       RoomID       `json:"roomId"`
	Content      string       `json:"content"`
	SenderID     UserID       `json:"senderId"`
	SenderName   string       `json:"senderName"`
	SenderAvatar string       `json:"senderAvatar,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	Attachments  []Attachment `json:"attachments,omitempty"`
	Reactions    []Reaction   `json:"reactions,omitempty"`
	ReplyTo      string       `json:"replyTo,omitempty"`
	IsEdited     bool         `json:"isEdited"`
	EditedAt     *time.Time   `json:"editedAt,omitempty"`
	IsDeleted    bool         `json:"isDeleted"`
	DeletedAt    *time.Time   `json:"deletedAt,omitempty"`
}

// MessagePatch carries the only mutations the update path allows.
// Nil fields are left untouched.
type MessagePatch struct {
	Content   *string
	Reactions []Reaction
	IsEdited  *bool
	EditedAt  *time.Time
	IsDeleted *bool
	DeletedAt *time.Time
}
