package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/avelis/pulse/internal/core"
	"github.com/avelis/pulse/internal/domain"
)

var ErrNotRegistered = errors.New("connection is not registered")

// MessageInput is what a connection is allowed to supply on send. Identity
// and timing are server-assigned, never taken from the payload.
type MessageInput struct {
	RoomID      domain.RoomID
	Content     string
	Attachments []domain.Attachment
	ReplyTo     string
}

// SendMessage persists an inbound message, broadcasts it to the room and
// bumps unread counters for every room member except the sender. Broadcast
// happens only after durable persistence succeeds; on store failure the
// originating connection alone gets an error event and nothing else changes.
func (s *Service) SendMessage(ctx context.Context, conn core.SignalConnection, in MessageInput) (*domain.Message, error) {
	uid, ok := s.Registry.Owner(conn.ID())
	if !ok {
		return nil, ErrNotRegistered
	}
	sender, _ := s.Registry.UserOf(uid)

	msg := &domain.Message{
		ID:          ulid.Make().String(),
		Type:        domain.DocTypeMessage,
		RoomID:      in.RoomID,
		Content:     in.Content,
		SenderID:    uid,
		Timestamp:   time.Now(),
		Attachments: in.Attachments,
		ReplyTo:     in.ReplyTo,
	}
	if sender != nil {
		msg.SenderName = sender.Name
		msg.SenderAvatar = sender.Avatar
	}

	if err := s.Store.Create(ctx, msg); err != nil {
		log.Error().Err(err).Str("module", "app.service").Str("room", string(in.RoomID)).Msg("persist message")
		s.sendTo(conn, core.ErrorEvent{Type: core.EventError, Message: "message could not be saved"})
		return nil, fmt.Errorf("persist message: %w", err)
	}

	s.broadcastRoom(msg.RoomID, msg)

	for _, member := range s.Rooms.Members(msg.RoomID) {
		if member == uid {
			continue
		}
		count := s.Tracker.Increment(msg.RoomID, member)
		s.sendToUser(member, core.UnreadCountEvent{
			Type:        core.EventUnreadCount,
			RoomID:      msg.RoomID,
			UnreadCount: count,
		})
	}
	return msg, nil
}

// MarkRead resets the caller's unread counter for the room and notifies all
// of their connections so every open tab converges.
func (s *Service) MarkRead(conn core.SignalConnection, roomID domain.RoomID) {
	uid, ok := s.Registry.Owner(conn.ID())
	if !ok {
		return
	}
	count := s.Tracker.MarkRead(roomID, uid)
	s.sendToUser(uid, core.UnreadCountEvent{
		Type:        core.EventUnreadCount,
		RoomID:      roomID,
		UnreadCount: count,
	})
}

// EditMessage updates a message's content through the store's patch path and
// broadcasts the updated document to the room the document belongs to.
// Sender and timestamp are immutable; the patch cannot touch them.
func (s *Service) EditMessage(ctx context.Context, msgID, content string) (*domain.Message, error) {
	now := time.Now()
	edited := true
	msg, err := s.Store.Update(ctx, msgID, domain.MessagePatch{
		Content:  &content,
		IsEdited: &edited,
		EditedAt: &now,
	})
	if err != nil {
		return nil, fmt.Errorf("edit message %s: %w", msgID, err)
	}
	s.broadcastRoom(msg.RoomID, msg)
	return msg, nil
}

// DeleteMessage soft-deletes: IsDeleted is a terminal one-way flag, the
// document itself stays in the store.
func (s *Service) DeleteMessage(ctx context.Context, msgID string) error {
	now := time.Now()
	deleted := true
	msg, err := s.Store.Update(ctx, msgID, domain.MessagePatch{
		IsDeleted: &deleted,
		DeletedAt: &now,
	})
	if err != nil {
		return fmt.Errorf("delete message %s: %w", msgID, err)
	}
	s.broadcastRoom(msg.RoomID, core.MessageDeletedEvent{
		Type:    core.EventMessageDeleted,
		RoomID:  msg.RoomID,
		Message: msg,
	})
	return nil
}

// History reads persisted messages for a room, newest first.
func (s *Service) History(ctx context.Context, roomID domain.RoomID, before string, limit int) ([]*domain.Message, error) {
	msgs, err := s.Store.Find(ctx, core.Query{RoomID: roomID, Before: before, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("room history %s: %w", roomID, err)
	}
	return msgs, nil
}
