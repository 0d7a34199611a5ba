package utils

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
)

func testUser(role models.Role) models.User {
	return models.User{
		ID:    primitive.NewObjectID(),
		Name:  "pat",
		Email: "pat@example.com",
		Role:  role,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	user := testUser(models.RoleTeacher)
	token, err := IssueToken(user, "secret", "issuer", time.Hour)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	claims, err := ValidateToken(token, "secret")
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if claims.UserID != user.ID.Hex() {
		t.Fatalf("expected user id %s, got %s", user.ID.Hex(), claims.UserID)
	}
	if claims.Role != models.RoleTeacher {
		t.Fatalf("expected role teacher, got %s", claims.Role)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := IssueToken(testUser(models.RoleStudent), "secret", "issuer", -time.Minute)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if _, err := ValidateToken(token, "secret"); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestWrongKeyRejected(t *testing.T) {
	token, err := IssueToken(testUser(models.RoleStudent), "secret", "issuer", time.Hour)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if _, err := ValidateToken(token, "other-secret"); err == nil {
		t.Fatalf("expected bad signature to be rejected")
	}
	if _, err := ValidateToken("not-a-token", "secret"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}
