package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avelis/pulse/internal/core"
	"github.com/avelis/pulse/internal/domain"
)

// SignalInput is a call-setup payload addressed to one user. The payload is
// opaque; the relay never parses it.
type SignalInput struct {
	TargetUserID domain.UserID
	Signal       string // offer, answer or candidate
	Payload      json.RawMessage
}

// RelaySignal stamps the sender's identity onto the envelope and delivers it
// to every live connection of the target user. A target with no live
// connections is a silent drop: the caller's own timeout handles dead calls,
// a disconnect race is not an error.
func (s *Service) RelaySignal(conn core.SignalConnection, in SignalInput) {
	uid, ok := s.Registry.Owner(conn.ID())
	if !ok {
		return
	}
	targets := s.Registry.ConnsOf(in.TargetUserID)
	if len(targets) == 0 {
		log.Debug().Str("module", "app.service").Str("from", string(uid)).Str("target", string(in.TargetUserID)).Msg("signal target offline, dropped")
		return
	}
	env := core.SignalEvent{
		Type:    core.EventSignaling,
		UserID:  uid,
		Signal:  in.Signal,
		Payload: in.Payload,
	}
	data, ok := s.marshal(env)
	if !ok {
		return
	}
	for _, c := range targets {
		_ = c.TrySend(data)
	}
}
