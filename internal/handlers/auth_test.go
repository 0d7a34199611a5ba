package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
	"github.com/Akhand0ps/Live-Attendance-System/internal/utils"
)

func TestRegisterThenLogin(t *testing.T) {
	e := newTestEnv(t)

	e.register(t, "tina", "t@x.com", "secret1", "teacher")
	token := e.login(t, "t@x.com", "secret1")

	claims, err := utils.ValidateToken(token, testSecret)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.Role != models.RoleTeacher {
		t.Fatalf("expected role teacher embedded in token, got %s", claims.Role)
	}
}

func TestRegisterExcludesPassword(t *testing.T) {
	e := newTestEnv(t)

	w, env := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name":     "tina",
		"email":    "t@x.com",
		"password": "secret1",
		"role":     "teacher",
	})
	if w.Code != 201 {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &fields); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := fields["password"]; ok {
		t.Fatalf("password leaked in register response")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newTestEnv(t)

	e.register(t, "tina", "t@x.com", "secret1", "teacher")
	w, env := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name":     "impostor",
		"email":    "t@x.com",
		"password": "secret2",
		"role":     "student",
	})
	if w.Code != 403 {
		t.Fatalf("expected 403 for duplicate email, got %d", w.Code)
	}
	if env.Success {
		t.Fatalf("expected failure envelope")
	}
}

func TestRegisterInvalidSchema(t *testing.T) {
	e := newTestEnv(t)

	cases := []gin.H{
		{"name": "x", "email": "not-an-email", "password": "secret1", "role": "teacher"},
		{"name": "x", "email": "a@b.com", "password": "short", "role": "teacher"},
		{"name": "x", "email": "a@b.com", "password": "secret1", "role": "principal"},
		{"email": "a@b.com", "password": "secret1", "role": "teacher"},
	}
	for i, body := range cases {
		if w, _ := e.do(t, http.MethodPost, "/auth/register", "", body); w.Code != 422 {
			t.Fatalf("case %d: expected 422, got %d", i, w.Code)
		}
	}
}

func TestLoginFailures(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "tina", "t@x.com", "secret1", "teacher")

	if w, _ := e.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "nobody@x.com", "password": "secret1"}); w.Code != 404 {
		t.Fatalf("expected 404 for unknown user, got %d", w.Code)
	}
	if w, _ := e.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "t@x.com", "password": "wrongpw"}); w.Code != 400 {
		t.Fatalf("expected 400 for bad password, got %d", w.Code)
	}
	if w, _ := e.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "t@x.com"}); w.Code != 422 {
		t.Fatalf("expected 422 for invalid schema, got %d", w.Code)
	}
}

func TestMe(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "tina", "t@x.com", "secret1", "teacher")
	token := e.login(t, "t@x.com", "secret1")

	w, env := e.do(t, http.MethodGet, "/auth/me", token, nil)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var user struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.Email != "t@x.com" || user.Role != "teacher" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if w, _ := e.do(t, http.MethodGet, "/auth/me", "", nil); w.Code != 401 {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}
