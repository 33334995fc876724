package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-ircd/internal/auth"
	"github.com/vovakirdan/wirechat-ircd/internal/core"
)

// Handlers provides HTTP handlers for the admin API endpoints.
type Handlers struct {
	state       *core.State
	authService *auth.Service
	log         *zerolog.Logger
}

// NewHandlers creates a new admin handlers instance.
func NewHandlers(state *core.State, authService *auth.Service, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		state:       state,
		authService: authService,
		log:         logger,
	}
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response body.
type AuthResponse struct {
	Token string `json:"token"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OverviewResponse summarizes the running server.
type OverviewResponse struct {
	ServerName  string `json:"server_name"`
	UptimeSecs  int64  `json:"uptime_seconds"`
	Sessions    int    `json:"sessions"`
	Registered  int    `json:"registered"`
	Channels    int    `json:"channels"`
}

// ChannelInfo is one channel in the channel listing.
type ChannelInfo struct {
	Name      string    `json:"name"`
	Members   int       `json:"members"`
	Topic     string    `json:"topic,omitempty"`
	Modes     string    `json:"modes"`
	CreatedAt time.Time `json:"created_at"`
}

// UserInfo is one registered client in the user listing.
type UserInfo struct {
	Nick     string `json:"nick"`
	Hostmask string `json:"hostmask"`
	Account  string `json:"account,omitempty"`
	Operator bool   `json:"operator"`
	Away     string `json:"away,omitempty"`
}

// Health reports liveness.
// GET /healthz
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Login handles operator login.
// POST /api/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("failed to login operator")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("username", req.Username).Msg("operator logged in")
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// Overview returns server-wide counters.
// GET /api/overview
func (h *Handlers) Overview(c *gin.Context) {
	c.JSON(http.StatusOK, OverviewResponse{
		ServerName: h.state.ServerName(),
		UptimeSecs: int64(h.state.Uptime().Seconds()),
		Sessions:   h.state.SessionCount(),
		Registered: h.state.Identities().Count(),
		Channels:   h.state.Rooms().Count(),
	})
}

// Channels lists every channel, secret ones included.
// GET /api/channels
func (h *Handlers) Channels(c *gin.Context) {
	rooms := h.state.Rooms().All()
	out := make([]ChannelInfo, 0, len(rooms))
	for _, room := range rooms {
		info := ChannelInfo{
			Name:      room.Name(),
			Members:   room.MemberCount(),
			CreatedAt: room.CreatedAt(),
		}
		if topic := room.Topic(); topic != nil {
			info.Topic = topic.Text
		}
		info.Modes, _ = room.ModeString(false)
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"channels": out})
}

// Users lists every registered client.
// GET /api/users
func (h *Handlers) Users(c *gin.Context) {
	ids := h.state.Identities().All()
	out := make([]UserInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, UserInfo{
			Nick:     id.Nick(),
			Hostmask: id.Hostmask(),
			Account:  id.Account(),
			Operator: id.Operator(),
			Away:     id.Away(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}
