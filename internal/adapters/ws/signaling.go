package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avelis/pulse/internal/app"
	"github.com/avelis/pulse/internal/domain"
)

func validSignal(kind string) bool {
	switch kind {
	case "offer", "answer", "candidate":
		return true
	}
	return false
}

func (ctl *Controller) handleSignaling(c *wsConn, data []byte) {
	type signalPayload struct {
		Type         string          `json:"type"`
		TargetUserID string          `json:"targetUserId"`
		Signal       string          `json:"signal"`
		Payload      json.RawMessage `json:"payload"`
	}
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil || p.TargetUserID == "" {
		log.Error().Err(err).Str("module", "ws").Msg("bad signaling payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if !validSignal(p.Signal) {
		ctl.sendError(c, "unknown signal kind")
		return
	}
	ctl.Svc.RelaySignal(c, app.SignalInput{
		TargetUserID: domain.UserID(p.TargetUserID),
		Signal:       p.Signal,
		Payload:      p.Payload,
	})
}
