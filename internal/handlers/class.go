package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Akhand0ps/Live-Attendance-System/internal/log"
	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
	"github.com/Akhand0ps/Live-Attendance-System/internal/store"
	"github.com/Akhand0ps/Live-Attendance-System/internal/utils"
)

type CreateClassRequest struct {
	ClassName string `json:"className" binding:"required,min=3"`
}

type AddStudentRequest struct {
	StudentID string `json:"studentId" binding:"required"`
}

type ClassHandler struct {
	users   store.UserStore
	classes store.ClassStore
}

func NewClassHandler(users store.UserStore, classes store.ClassStore) *ClassHandler {
	return &ClassHandler{users: users, classes: classes}
}

func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request schema")
		return
	}

	teacherID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		utils.ErrorResponse(c, 404, "Teacher not found")
		return
	}

	teacher, err := h.users.FindByID(c.Request.Context(), teacherID)
	if err != nil || teacher.Role != models.RoleTeacher {
		utils.ErrorResponse(c, 404, "Teacher not found")
		return
	}

	class, err := h.classes.Create(c.Request.Context(), models.Class{
		ClassName: req.ClassName,
		TeacherID: teacherID,
	})
	if err != nil {
		if err == store.ErrConflict {
			utils.ErrorResponse(c, 409, "Class already exists")
			return
		}
		log.Logger.Error("failed to create class", zap.Error(err))
		utils.ErrorResponse(c, 500, "Internal server error")
		return
	}

	utils.SuccessResponse(c, 201, class)
}

func (h *ClassHandler) AddStudent(c *gin.Context) {
	classID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, 400, "Invalid class ID")
		return
	}

	var req AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid request schema")
		return
	}

	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		utils.ErrorResponse(c, 400, "Invalid student ID")
		return
	}

	student, err := h.users.FindByID(c.Request.Context(), studentID)
	if err != nil || student.Role != models.RoleStudent {
		utils.ErrorResponse(c, 404, "Student not found")
		return
	}

	class, err := h.classes.FindByID(c.Request.Context(), classID)
	if err != nil {
		utils.ErrorResponse(c, 404, "Class not found")
		return
	}

	if class.TeacherID.Hex() != c.GetString("userId") {
		utils.ErrorResponse(c, 403, "Forbidden, not class teacher")
		return
	}

	updated, err := h.classes.AddStudent(c.Request.Context(), classID, studentID)
	if err != nil {
		switch err {
		case store.ErrConflict:
			utils.ErrorResponse(c, 409, "Student already enrolled in class")
		case store.ErrNotFound:
			utils.ErrorResponse(c, 404, "Class not found")
		default:
			log.Logger.Error("failed to add student", zap.Error(err))
			utils.ErrorResponse(c, 500, "Internal server error")
		}
		return
	}

	utils.SuccessResponse(c, 201, updated)
}

func (h *ClassHandler) GetClass(c *gin.Context) {
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

	isTeacher := c.GetString("role") == string(models.RoleTeacher) && class.TeacherID == userID
	if !isTeacher && !class.HasStudent(userID) {
		utils.ErrorResponse(c, 404, "You are not enrolled in the class")
		return
	}

	roster := make([]models.RosterEntry, 0, len(class.StudentIDs))
	for _, sid := range class.StudentIDs {
		student, err := h.users.FindByID(c.Request.Context(), sid)
		if err != nil {
			continue
		}
		roster = append(roster, models.RosterEntry{ID: student.ID, Name: student.Name, Email: student.Email})
	}

	utils.SuccessResponse(c, 200, gin.H{
		"_id":       class.ID,
		"className": class.ClassName,
		"teacherId": class.TeacherID,
		"students":  roster,
		"createdAt": class.CreatedAt,
		"updatedAt": class.UpdatedAt,
	})
}

func (h *ClassHandler) GetStudents(c *gin.Context) {
	students, err := h.users.ListByRole(c.Request.Context(), models.RoleStudent)
	if err != nil {
		log.Logger.Error("failed to list students", zap.Error(err))
		utils.ErrorResponse(c, 500, "Internal server error")
		return
	}

	out := make([]models.RosterEntry, 0, len(students))
	for _, s := range students {
		out = append(out, models.RosterEntry{ID: s.ID, Name: s.Name, Email: s.Email})
	}
	utils.SuccessResponse(c, 200, out)
}
