package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Akhand0ps/Live-Attendance-System/internal/log"
	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
	"github.com/Akhand0ps/Live-Attendance-System/internal/store"
	"github.com/Akhand0ps/Live-Attendance-System/internal/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type AuthHandler struct {
	users    store.UserStore
	secret   string
	issuer   string
	tokenTTL time.Duration
}

func NewAuthHandler(users store.UserStore, secret, issuer string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{users: users, secret: secret, issuer: issuer, tokenTTL: tokenTTL}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 422, "Invalid request schema")
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		utils.ErrorResponse(c, 422, "Invalid request schema")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Logger.Error("password hashing failed", zap.Error(err))
		utils.ErrorResponse(c, 500, "Internal server error")
		return
	}

	user, err := h.users.Create(c.Request.Context(), models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     role,
	})
	if err != nil {
		if err == store.ErrConflict {
			utils.ErrorResponse(c, 403, "Email already exists")
			return
		}
		log.Logger.Error("failed to create user", zap.Error(err))
		utils.ErrorResponse(c, 500, "Internal server error")
		return
	}

	utils.SuccessResponse(c, 201, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 422, "Invalid request schema")
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if err == store.ErrNotFound {
			utils.ErrorResponse(c, 404, "User not found")
			return
		}
		log.Logger.Error("user lookup failed", zap.Error(err))
		utils.ErrorResponse(c, 500, "Internal server error")
		return
	}

	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		utils.ErrorResponse(c, 400, "Invalid email or password")
		return
	}

	token, err := utils.IssueToken(*user, h.secret, h.issuer, h.tokenTTL)
	if err != nil {
		log.Logger.Error("token signing failed", zap.Error(err))
		utils.ErrorResponse(c, 500, "Internal server error")
		return
	}

	utils.SuccessResponse(c, 200, gin.H{"token": token})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		utils.ErrorResponse(c, 404, "User not found")
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		if err == store.ErrNotFound {
			utils.ErrorResponse(c, 404, "User not found")
			return
		}
		log.Logger.Error("user lookup failed", zap.Error(err))
		utils.ErrorResponse(c, 500, "Internal server error")
		return
	}

	utils.SuccessResponse(c, 200, user)
}
