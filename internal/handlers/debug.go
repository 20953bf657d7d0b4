package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/fanout"
	"messaging-service/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints: an audit-pipeline check and
// a fan-out snapshot for inspecting live room subscriptions.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, hub *fanout.Hub, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		text := c.DefaultQuery("text", "messaging audit pipeline check")
		emitter.Emit(c.Request.Context(), "INFO", text, requestIDFromContext(c), studentIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/debug/fanout", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"activeSubscriptions": hub.ActiveSubscriptions()})
	})
}
