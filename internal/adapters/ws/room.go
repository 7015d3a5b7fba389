package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avelis/pulse/internal/domain"
)

func (ctl *Controller) handleJoin(c *wsConn, data []byte) {
	type joinPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Error().Err(err).Str("module", "ws").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	log.Info().Str("module", "ws").Str("conn", string(c.id)).Str("room", p.RoomID).Msg("join_room")
	ctl.Svc.Join(c, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleLeave(c *wsConn, data []byte) {
	type leavePayload struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	log.Info().Str("module", "ws").Str("conn", string(c.id)).Str("room", p.RoomID).Msg("leave_room")
	ctl.Svc.Leave(c, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleTyping(c *wsConn, data []byte, typing bool) {
	type typingPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	var p typingPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, "bad_payload")
		return
	}
	ctl.Svc.SetTyping(c, domain.RoomID(p.RoomID), typing)
}
