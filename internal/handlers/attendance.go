package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Akhand0ps/Live-Attendance-System/internal/log"
	"github.com/Akhand0ps/Live-Attendance-System/internal/session"
	"github.com/Akhand0ps/Live-Attendance-System/internal/store"
	"github.com/Akhand0ps/Live-Attendance-System/internal/utils"
)

type StartAttendanceRequest struct {
	ClassName string `json:"className" binding:"required,min=3"`
}

type AttendanceHandler struct {
	classes     store.ClassStore
	attendance  store.AttendanceStore
	coordinator *session.Coordinator
}

func NewAttendanceHandler(classes store.ClassStore, attendance store.AttendanceStore, coordinator *session.Coordinator) *AttendanceHandler {
	return &AttendanceHandler{classes: classes, attendance: attendance, coordinator: coordinator}
}

func (h *AttendanceHandler) GetMyAttendance(c *gin.Context) {
	classID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, 400, "Invalid class ID")
		return
	}

	studentID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		utils.ErrorResponse(c, 404, "User not found")
		return
	}

	class, err := h.classes.FindByID(c.Request.Context(), classID)
	if err != nil {
		utils.ErrorResponse(c, 404, "Class not found")
		return
	}

	if !class.HasStudent(studentID) {
		utils.ErrorResponse(c, 403, "You are not in the class, please contact your professor/admin")
		return
	}

	record, err := h.attendance.Find(c.Request.Context(), classID, studentID)
	if err != nil {
		if err == store.ErrNotFound {
			utils.MessageResponse(c, 200, "attendance not marked yet", nil)
			return
		}
		log.Logger.Error("attendance lookup failed", zap.Error(err))
		utils.ErrorResponse(c, 500, "Internal server error")
		return
	}

	utils.SuccessResponse(c, 200, gin.H{
		"classId": class.ID,
		"status":  record.Status,
	})
}

func (h *AttendanceHandler) StartAttendance(c *gin.Context) {
	var req StartAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request schema")
		return
	}

	class, err := h.classes.FindByName(c.Request.Context(), req.ClassName)
	if err != nil {
		if err == store.ErrNotFound {
			utils.ErrorResponse(c, 404, "Class not found")
			return
		}
		log.Logger.Error("class lookup failed", zap.Error(err))
		utils.ErrorResponse(c, 500, "Internal server error")
		return
	}

	if class.TeacherID.Hex() != c.GetString("userId") {
		utils.ErrorResponse(c, 403, "Forbidden, not class teacher")
		return
	}

	info, err := h.coordinator.Start(class.ID.Hex())
	if err != nil {
		if err == session.ErrAlreadyOpen {
			utils.ErrorResponse(c, 409, "Attendance session already open")
			return
		}
		log.Logger.Error("failed to start session", zap.Error(err))
		utils.ErrorResponse(c, 500, "Internal server error")
		return
	}

	utils.SuccessResponse(c, 200, gin.H{
		"classId":   info.ClassID,
		"className": class.ClassName,
		"roomId":    info.RoomID,
		"startedAt": info.StartedAt,
	})
}

// GetSessionInfo tells class members whether a live session is open.
func (h *AttendanceHandler) GetSessionInfo(c *gin.Context) {
	classID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, 400, "Invalid class ID")
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		utils.ErrorResponse(c, 404, "User not found")
		return
	}

	class, err := h.classes.FindByID(c.Request.Context(), classID)
	if err != nil {
		utils.ErrorResponse(c, 404, "Class not found")
		return
	}

	if class.TeacherID != userID && !class.HasStudent(userID) {
		utils.ErrorResponse(c, 403, "Forbidden, not authorized for this class")
		return
	}

	info, open := h.coordinator.Info(class.ID.Hex())
	if !open {
		utils.SuccessResponse(c, 200, gin.H{
			"classId":  class.ID.Hex(),
			"isActive": false,
		})
		return
	}

	utils.SuccessResponse(c, 200, gin.H{
		"classId":   info.ClassID,
		"roomId":    info.RoomID,
		"startedAt": info.StartedAt,
		"isActive":  true,
	})
}
