package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
)

func TestMyAttendanceNotMarkedYet(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "tina", "t@x.com", "secret1", "teacher")
	studentID := e.register(t, "sam", "s@x.com", "secret1", "student")
	teacher := e.login(t, "t@x.com", "secret1")
	classID := e.createClass(t, teacher, "CS101")
	if w, _ := e.do(t, http.MethodPost, "/class/"+classID+"/add-student", teacher, gin.H{"studentId": studentID}); w.Code != 201 {
		t.Fatalf("add student failed: %d", w.Code)
	}

	student := e.login(t, "s@x.com", "secret1")
	w, env := e.do(t, http.MethodGet, "/attendance/"+classID+"/my-attendance", student, nil)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if env.Message != "attendance not marked yet" {
		t.Fatalf("expected not-marked message, got %q", env.Message)
	}
}

func TestMyAttendanceGuards(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "tina", "t@x.com", "secret1", "teacher")
	e.register(t, "sam", "s@x.com", "secret1", "student")
	teacher := e.login(t, "t@x.com", "secret1")
	student := e.login(t, "s@x.com", "secret1")
	classID := e.createClass(t, teacher, "CS101")

	// Not enrolled.
	if w, _ := e.do(t, http.MethodGet, "/attendance/"+classID+"/my-attendance", student, nil); w.Code != 403 {
		t.Fatalf("expected 403 for unenrolled student, got %d", w.Code)
	}
	// Unknown class.
	if w, _ := e.do(t, http.MethodGet, "/attendance/656565656565656565656565/my-attendance", student, nil); w.Code != 404 {
		t.Fatalf("expected 404 for unknown class, got %d", w.Code)
	}
	// Teachers have no self-attendance.
	if w, _ := e.do(t, http.MethodGet, "/attendance/"+classID+"/my-attendance", teacher, nil); w.Code != 403 {
		t.Fatalf("expected 403 for teacher, got %d", w.Code)
	}
}

func TestMyAttendanceAfterSessionClose(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "tina", "t@x.com", "secret1", "teacher")
	studentID := e.register(t, "sam", "s@x.com", "secret1", "student")
	teacher := e.login(t, "t@x.com", "secret1")
	classID := e.createClass(t, teacher, "CS101")
	if w, _ := e.do(t, http.MethodPost, "/class/"+classID+"/add-student", teacher, gin.H{"studentId": studentID}); w.Code != 201 {
		t.Fatalf("add student failed: %d", w.Code)
	}

	if w, _ := e.do(t, http.MethodPost, "/attendance/start", teacher, gin.H{"className": "CS101"}); w.Code != 200 {
		t.Fatalf("start failed: %d", w.Code)
	}
	if err := e.coordinator.Mark(classID, studentID, models.StatusPresent); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if _, err := e.coordinator.End(context.Background(), classID); err != nil {
		t.Fatalf("end failed: %v", err)
	}

	student := e.login(t, "s@x.com", "secret1")
	w, env := e.do(t, http.MethodGet, "/attendance/"+classID+"/my-attendance", student, nil)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var data struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Status != "present" {
		t.Fatalf("expected present, got %q", data.Status)
	}
}

func TestStartAttendance(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "tina", "t@x.com", "secret1", "teacher")
	e.register(t, "tom", "tom@x.com", "secret1", "teacher")
	teacher := e.login(t, "t@x.com", "secret1")
	other := e.login(t, "tom@x.com", "secret1")
	e.createClass(t, teacher, "CS101")

	if w, _ := e.do(t, http.MethodPost, "/attendance/start", teacher, gin.H{"className": "NOPE101"}); w.Code != 404 {
		t.Fatalf("expected 404 for unknown class, got %d", w.Code)
	}
	if w, _ := e.do(t, http.MethodPost, "/attendance/start", other, gin.H{"className": "CS101"}); w.Code != 403 {
		t.Fatalf("expected 403 for non-owning teacher, got %d", w.Code)
	}

	w, env := e.do(t, http.MethodPost, "/attendance/start", teacher, gin.H{"className": "CS101"})
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var data struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.RoomID == "" {
		t.Fatalf("expected a room id")
	}

	if w, _ := e.do(t, http.MethodPost, "/attendance/start", teacher, gin.H{"className": "CS101"}); w.Code != 409 {
		t.Fatalf("expected 409 for already-open session, got %d", w.Code)
	}
}

func TestConcurrentStartOneWins(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "tina", "t@x.com", "secret1", "teacher")
	teacher := e.login(t, "t@x.com", "secret1")
	e.createClass(t, teacher, "CS101")

	const n = 8
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, _ := e.do(t, http.MethodPost, "/attendance/start", teacher, gin.H{"className": "CS101"})
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	ok, conflict := 0, 0
	for code := range codes {
		switch code {
		case 200:
			ok++
		case 409:
			conflict++
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}
	if ok != 1 || conflict != n-1 {
		t.Fatalf("expected exactly one 200, got %d x 200 and %d x 409", ok, conflict)
	}
}

func TestSessionInfo(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "tina", "t@x.com", "secret1", "teacher")
	teacher := e.login(t, "t@x.com", "secret1")
	classID := e.createClass(t, teacher, "CS101")

	w, env := e.do(t, http.MethodGet, "/attendance/"+classID+"/session", teacher, nil)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var info struct {
		IsActive bool `json:"isActive"`
	}
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.IsActive {
		t.Fatalf("expected no active session")
	}

	if w, _ := e.do(t, http.MethodPost, "/attendance/start", teacher, gin.H{"className": "CS101"}); w.Code != 200 {
		t.Fatalf("start failed: %d", w.Code)
	}
	_, env = e.do(t, http.MethodGet, "/attendance/"+classID+"/session", teacher, nil)
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !info.IsActive {
		t.Fatalf("expected active session")
	}
}
