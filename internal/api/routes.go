package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the handlers behind logging and recovery middleware.
// /healthz and / stay open; everything else requires the API token.
func NewRouter(h *Handler, apiToken string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(LoggerMiddleware(log), RecoveryMiddleware(log))

	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)

	protected := r.Group("/", TokenMiddleware(apiToken))
	protected.GET("/karriere/search", h.Search)

	r.NoRoute(RawOnly, TokenMiddleware(apiToken), h.Raw)
	return r
}
