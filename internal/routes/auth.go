package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Akhand0ps/Live-Attendance-System/internal/handlers"
	"github.com/Akhand0ps/Live-Attendance-System/internal/middleware"
)

func AuthRoutes(r *gin.Engine, h *handlers.AuthHandler, secret string) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", middleware.Authenticate(secret), h.Me)
	}
}
