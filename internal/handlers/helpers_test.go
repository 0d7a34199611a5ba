package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Akhand0ps/Live-Attendance-System/internal/handlers"
	"github.com/Akhand0ps/Live-Attendance-System/internal/routes"
	"github.com/Akhand0ps/Live-Attendance-System/internal/session"
	"github.com/Akhand0ps/Live-Attendance-System/internal/store"
)

const testSecret = "test-secret"

type testEnv struct {
	router      *gin.Engine
	mem         *store.Memory
	coordinator *session.Coordinator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	coordinator := session.NewCoordinator(store.SessionBackend{
		Classes:    mem.Classes(),
		Attendance: mem.Attendance(),
	}, 0)

	r := gin.New()
	routes.AuthRoutes(r, handlers.NewAuthHandler(mem.Users(), testSecret, "test", time.Hour), testSecret)
	routes.ClassRoutes(r, handlers.NewClassHandler(mem.Users(), mem.Classes()), testSecret)
	routes.AttendanceRoutes(r, handlers.NewAttendanceHandler(mem.Classes(), mem.Attendance(), coordinator), testSecret)

	return &testEnv{router: r, mem: mem, coordinator: coordinator}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// register creates an account and returns its id.
func (e *testEnv) register(t *testing.T, name, email, password, role string) string {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     role,
	})
	if w.Code != 201 {
		t.Fatalf("register %s failed with %d: %s", email, w.Code, w.Body.String())
	}
	var user struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	return user.ID
}

// login returns a bearer token.
func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	if w.Code != 200 {
		t.Fatalf("login %s failed with %d: %s", email, w.Code, w.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	return data.Token
}

// createClass registers the class and returns its id.
func (e *testEnv) createClass(t *testing.T, token, className string) string {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/class/create-class", token, gin.H{"className": className})
	if w.Code != 201 {
		t.Fatalf("create class failed with %d: %s", w.Code, w.Body.String())
	}
	var class struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(env.Data, &class); err != nil {
		t.Fatalf("decode class: %v", err)
	}
	return class.ID
}
