// Package adminhttp serves a small side-channel HTTP surface alongside the
// stdio JSON-RPC tool transport: a liveness probe and a detail-leveled
// health endpoint backed by the same coordinator.Service.Ping the ping tool
// uses. It never carries task traffic — that stays on stdio — so it can be
// bound to a loopback-only address for operators and orchestrators without
// exposing the tool surface itself over the network.
package adminhttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcus-ai/marcus/internal/service/coordinator"
	"github.com/marcus-ai/marcus/internal/transport/eventws"
)

// RequestLogger logs every request at Info, except CORS preflight OPTIONS
// requests.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.Method == http.MethodOptions {
			return
		}
		if log == nil {
			return
		}
		log.Info("admin http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// NewRouter builds the admin HTTP surface: GET /healthz (liveness only, no
// coordinator call), GET /ping?level=basic|standard|diagnostic
// (coordinator.Service.Ping, same report the ping tool returns), and, when
// hub is non-nil, GET /ws for the live event feed.
func NewRouter(coord *coordinator.Service, hub *eventws.Hub, log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.GET("/ping", func(c *gin.Context) {
		level := coordinator.PingLevel(c.DefaultQuery("level", string(coordinator.PingStandard)))
		c.JSON(http.StatusOK, coord.Ping(level))
	})

	if hub != nil {
		hub.Register(r.Group("/ws"))
	}

	return r
}
