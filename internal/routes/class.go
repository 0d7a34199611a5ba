package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Akhand0ps/Live-Attendance-System/internal/handlers"
	"github.com/Akhand0ps/Live-Attendance-System/internal/middleware"
	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
)

func ClassRoutes(r *gin.Engine, h *handlers.ClassHandler, secret string) {
	authenticated := middleware.Authenticate(secret)
	teacherOnly := middleware.RequireRole(models.RoleTeacher)

	r.POST("/class/create-class", authenticated, teacherOnly, h.CreateClass)
	r.POST("/class/:id/add-student", authenticated, teacherOnly, h.AddStudent)
	r.GET("/class/:id", authenticated, h.GetClass)
	r.GET("/students", authenticated, teacherOnly, h.GetStudents)
}
