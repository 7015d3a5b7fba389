package ws

import "github.com/avelis/pulse/internal/core"

func (ctl *Controller) handlePing(c *wsConn) {
	ctl.sendJSON(c, core.PongEvent{Type: core.EventPong})
}
