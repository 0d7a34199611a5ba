package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Akhand0ps/Live-Attendance-System/internal/session"
)

// DebugRoutes exposes coordinator state for local inspection. Not
// mounted in production.
func DebugRoutes(r *gin.Engine, coordinator *session.Coordinator) {
	r.GET("/debug/sessions", func(c *gin.Context) {
		c.JSON(200, gin.H{"open": coordinator.OpenCount()})
	})
}
