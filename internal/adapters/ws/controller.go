package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/avelis/pulse/internal/app"
	"github.com/avelis/pulse/internal/auth"
	"github.com/avelis/pulse/internal/config"
	"github.com/avelis/pulse/internal/core"
	"github.com/avelis/pulse/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Svc     *app.Service
	Auth    *auth.Manager
	Cfg     *config.Config
	limiter *RateLimiter
}

func NewController(svc *app.Service, verifier *auth.Manager, cfg *config.Config) *Controller {
	return &Controller{
		Svc:     svc,
		Auth:    verifier,
		Cfg:     cfg,
		limiter: NewRateLimiter(cfg.MsgRateLimit, cfg.MsgRateWindow),
	}
}

type wsConn struct {
	id   core.ConnID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) ID() core.ConnID { return c.id }

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// TokenFromRequest looks for the handshake credential in the query string,
// the Authorization header, then the cookie session. The REST layer uses the
// same lookup so both surfaces accept the same credential.
func TokenFromRequest(c *gin.Context) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	const prefix = "Bearer "
	if h := c.GetHeader("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	if t, ok := sessions.Default(c).Get("token").(string); ok {
		return t
	}
	return ""
}

// HandleSocket authenticates the handshake, upgrades and registers the
// connection. A missing or invalid credential refuses the connection before
// any state is created.
func (ctl *Controller) HandleSocket(ctx context.Context, c *gin.Context) {
	claims, err := ctl.Auth.Verify(TokenFromRequest(c))
	if err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("remote", c.ClientIP()).Msg("handshake refused")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	socket, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("ws upgrade")
		return
	}
	socket.SetReadLimit(ctl.Cfg.ReadLimit)

	conn := &wsConn{
		id:   core.ConnID(uuid.NewString()),
		conn: socket,
		send: make(chan core.Frame, 32),
	}
	user := &domain.User{
		ID:     domain.UserID(claims.UserID),
		Name:   claims.Name,
		Avatar: claims.Avatar,
	}
	log.Info().Str("module", "ws").Str("user", claims.UserID).Str("conn", string(conn.id)).Msg("new WS connection")

	ctl.Svc.Connect(conn, user)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, conn)
	}()
}

func (ctl *Controller) writeDeadline() time.Time {
	return time.Now().Add(5 * time.Second)
}
