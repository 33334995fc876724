// Package admin serves the operator HTTP API: login, read-only server
// introspection, health and metrics.
package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-ircd/internal/auth"
	"github.com/vovakirdan/wirechat-ircd/internal/core"
	"github.com/vovakirdan/wirechat-ircd/internal/metrics"
)

// NewServer builds the admin HTTP server.
func NewServer(addr string, state *core.State, authService *auth.Service, m *metrics.Metrics, logger *zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	h := NewHandlers(state, authService, logger)

	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	router.POST("/api/login", h.Login)

	authorized := router.Group("/api", AuthMiddleware(authService, logger))
	authorized.GET("/overview", h.Overview)
	authorized.GET("/channels", h.Channels)
	authorized.GET("/users", h.Users)

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
