package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avelis/pulse/internal/adapters/ws"
	"github.com/avelis/pulse/internal/app"
	"github.com/avelis/pulse/internal/auth"
	"github.com/avelis/pulse/internal/config"
	"github.com/avelis/pulse/internal/core"
	"github.com/avelis/pulse/internal/domain"
)

// AuthRequired verifies the same credential the WS handshake checks, so the
// REST message surface is never more permissive than the socket.
func AuthRequired(authMgr *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authMgr.Verify(ws.TokenFromRequest(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, svc *app.Service, authMgr *auth.Manager) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("PulseSession", store))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := ws.NewController(svc, authMgr, cfg)

	api := r.Group("/api")

	api.POST("/login", func(c *gin.Context) { handleLogin(c, authMgr) })

	api.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSocket(ctx, c)
	})

	rooms := api.Group("/rooms", AuthRequired(authMgr))
	rooms.GET("/:id/messages", func(c *gin.Context) { handleHistory(c, svc) })
	rooms.PATCH("/:id/messages/:mid", func(c *gin.Context) { handleEdit(c, svc) })
	rooms.DELETE("/:id/messages/:mid", func(c *gin.Context) { handleDelete(c, svc) })

	return r
}

// handleLogin issues a signed token for the given identity and remembers it
// in the cookie session so a browser reconnects as the same user. Who may
// log in as whom is the outer application's concern, not this layer's.
func handleLogin(c *gin.Context, authMgr *auth.Manager) {
	var req struct {
		UserID string `json:"userId"`
		Name   string `json:"name" binding:"required"`
		Avatar string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}
	if req.UserID == "" {
		req.UserID = uuid.NewString()
	}
	if _, err := domain.NewUser(domain.UserID(req.UserID), req.Name, req.Avatar); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := authMgr.Issue(req.UserID, req.Name, req.Avatar)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}
	sess := sessions.Default(c)
	sess.Set("token", token)
	if err := sess.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "userId": req.UserID})
}

func handleHistory(c *gin.Context, svc *app.Service) {
	roomID := domain.RoomID(c.Param("id"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	msgs, err := svc.History(c.Request.Context(), roomID, c.Query("before"), limit)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(roomID)).Msg("history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": roomID, "messages": msgs})
}

func handleEdit(c *gin.Context, svc *app.Service) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}
	msg, err := svc.EditMessage(c.Request.Context(), c.Param("mid"), req.Content)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "edit_failed"})
		return
	}
	c.JSON(http.StatusOK, msg)
}

func handleDelete(c *gin.Context, svc *app.Service) {
	if err := svc.DeleteMessage(c.Request.Context(), c.Param("mid")); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
