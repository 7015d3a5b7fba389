package app

import "github.com/avelis/pulse/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickConn
)

// Policy decides what happens to a connection whose send buffer was full
// during a broadcast.
type Policy interface {
	OnBackpressure(roomID string, conn core.SignalConnection) BackpressureAction
}

// SimplePolicy drops the frame for the slow connection. Chat frames are
// recoverable from history, so kicking is reserved for stricter policies.
type SimplePolicy struct{}

func (SimplePolicy) OnBackpressure(roomID string, conn core.SignalConnection) BackpressureAction {
	return DropFrame
}
