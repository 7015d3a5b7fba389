package ws

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avelis/pulse/internal/app"
	"github.com/avelis/pulse/internal/domain"
)

func (ctl *Controller) handleMessage(ctx context.Context, c *wsConn, data []byte) {
	type messagePayload struct {
		Type        string              `json:"type"`
		RoomID      string              `json:"roomId"`
		Content     string              `json:"content"`
		Attachments []domain.Attachment `json:"attachments,omitempty"`
		ReplyTo     string              `json:"replyTo,omitempty"`
	}
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Error().Err(err).Str("module", "ws").Msg("bad message payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if p.Content == "" && len(p.Attachments) == 0 {
		ctl.sendError(c, "empty message")
		return
	}

	if uid, ok := ctl.Svc.Registry.Owner(c.id); ok && !ctl.limiter.Allow(uid) {
		log.Warn().Str("module", "ws").Str("user", string(uid)).Msg("message rate limited")
		ctl.sendError(c, "rate_limited")
		return
	}

	// Error reporting to the sender happens inside the relay; persistence
	// failure must never reach the room.
	_, _ = ctl.Svc.SendMessage(ctx, c, app.MessageInput{
		RoomID:      domain.RoomID(p.RoomID),
		Content:     p.Content,
		Attachments: p.Attachments,
		ReplyTo:     p.ReplyTo,
	})
}

func (ctl *Controller) handleMarkRead(c *wsConn, data []byte) {
	type markReadPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	var p markReadPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Svc.MarkRead(c, domain.RoomID(p.RoomID))
}
