package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
	"github.com/Akhand0ps/Live-Attendance-System/internal/utils"
)

// Authenticate verifies the bearer token and puts the embedded identity
// on the context. Rejection always aborts the chain.
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, 401, "Unauthorized, token missing or invalid")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)

		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil {
			utils.ErrorResponse(c, 401, "Unauthorized, token missing or invalid")
			c.Abort()
			return
		}

		c.Set("userId", claims.UserID)
		c.Set("role", string(claims.Role))
		c.Next()
	}
}

// RequireRole rejects any identity whose role differs from the expected
// one. It is a pure predicate: no store access, no mutation.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != string(role) {
			utils.ErrorResponse(c, 403, "Forbidden, "+string(role)+" access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
