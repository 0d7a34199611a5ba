package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Akhand0ps/Live-Attendance-System/internal/handlers"
	"github.com/Akhand0ps/Live-Attendance-System/internal/middleware"
	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
)

func AttendanceRoutes(r *gin.Engine, h *handlers.AttendanceHandler, secret string) {
	authenticated := middleware.Authenticate(secret)

	r.POST("/attendance/start", authenticated, middleware.RequireRole(models.RoleTeacher), h.StartAttendance)
	r.GET("/attendance/:id/my-attendance", authenticated, middleware.RequireRole(models.RoleStudent), h.GetMyAttendance)
	r.GET("/attendance/:id/session", authenticated, h.GetSessionInfo)
}
