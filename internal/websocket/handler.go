package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Akhand0ps/Live-Attendance-System/internal/log"
	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
	"github.com/Akhand0ps/Live-Attendance-System/internal/session"
	"github.com/Akhand0ps/Live-Attendance-System/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced at the HTTP layer
	},
}

// Message is the live-session wire format, both directions. Fields not
// relevant to a message type stay empty.
type Message struct {
	Type      string   `json:"type"`
	StudentID string   `json:"studentId,omitempty"`
	Status    string   `json:"status,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Present   int      `json:"present,omitempty"`
	Absent    int      `json:"absent,omitempty"`
	Total     int      `json:"total,omitempty"`
	Failed    []string `json:"failed,omitempty"`
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	userID  string
	role    models.Role
	classID string
}

// write serializes writes; gorilla allows only one concurrent writer.
func (cl *client) write(msg Message) error {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	return cl.conn.WriteJSON(msg)
}

// Hub routes live-session connections by class. One room per class,
// clients are the owning teacher and enrolled students.
type Hub struct {
	mu          sync.Mutex
	rooms       map[string]map[*client]struct{}
	coordinator *session.Coordinator
	classes     store.ClassStore
	validate    func(token string) (userID string, role models.Role, err error)
}

func NewHub(coordinator *session.Coordinator, classes store.ClassStore, validate func(string) (string, models.Role, error)) *Hub {
	return &Hub{
		rooms:       make(map[string]map[*client]struct{}),
		coordinator: coordinator,
		classes:     classes,
		validate:    validate,
	}
}

// Handle authenticates, authorizes against the class roster and then
// upgrades the connection into the class room.
func (h *Hub) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(401, gin.H{"success": false, "error": "token missing"})
		return
	}

	userID, role, err := h.validate(token)
	if err != nil {
		c.JSON(401, gin.H{"success": false, "error": "invalid token"})
		return
	}

	classID, err := primitive.ObjectIDFromHex(c.Query("classId"))
	if err != nil {
		c.JSON(400, gin.H{"success": false, "error": "invalid class ID"})
		return
	}

	class, err := h.classes.FindByID(c.Request.Context(), classID)
	if err != nil {
		c.JSON(404, gin.H{"success": false, "error": "class not found"})
		return
	}

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(401, gin.H{"success": false, "error": "invalid token"})
		return
	}
	isTeacher := role == models.RoleTeacher && class.TeacherID == uid
	if !isTeacher && !class.HasStudent(uid) {
		c.JSON(403, gin.H{"success": false, "error": "not authorized for this class"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, userID: userID, role: role, classID: class.ID.Hex()}
	h.join(cl)
	log.Logger.Info("ws client connected",
		zap.String("userId", userID),
		zap.String("classId", cl.classID),
		zap.String("role", string(role)))

	go h.readLoop(cl)
}

func (h *Hub) join(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[cl.classID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[cl.classID] = room
	}
	room[cl] = struct{}{}
}

func (h *Hub) leave(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[cl.classID]; ok {
		delete(room, cl)
		if len(room) == 0 {
			delete(h.rooms, cl.classID)
		}
	}
}

func (h *Hub) readLoop(cl *client) {
	defer func() {
		h.leave(cl)
		cl.conn.Close()
		log.Logger.Info("ws client disconnected", zap.String("userId", cl.userID))
	}()

	for {
		var msg Message
		if err := cl.conn.ReadJSON(&msg); err != nil {
			// A broken socket drops only this client; any mark it sent
			// is retained until the session closes.
			return
		}

		switch msg.Type {
		case "mark":
			h.handleMark(cl, msg)
		case "status":
			h.handleStatus(cl)
		case "summary":
			h.handleSummary(cl)
		case "end":
			h.handleEnd(cl)
		default:
			h.sendError(cl, "unknown message type")
		}
	}
}

func (h *Hub) handleMark(cl *client, msg Message) {
	studentID := msg.StudentID
	switch cl.role {
	case models.RoleStudent:
		// Students mark only themselves.
		if studentID == "" {
			studentID = cl.userID
		}
		if studentID != cl.userID {
			h.sendError(cl, "students may only mark their own attendance")
			return
		}
	case models.RoleTeacher:
		if studentID == "" {
			h.sendError(cl, "studentId required")
			return
		}
		// A mark for someone outside the roster would become a durable
		// attendance record for a user not in the class.
		if !h.onRoster(cl.classID, studentID) {
			h.sendError(cl, "student not in class roster")
			return
		}
	}

	status, err := models.ParseStatus(msg.Status)
	if err != nil {
		h.sendError(cl, "invalid status")
		return
	}

	if err := h.coordinator.Mark(cl.classID, studentID, status); err != nil {
		h.sendError(cl, "no active attendance session")
		return
	}

	if err := cl.write(Message{Type: "ack", StudentID: studentID, Status: string(status)}); err != nil {
		h.drop(cl)
		return
	}
	h.broadcast(cl.classID, Message{Type: "mark", StudentID: studentID, Status: string(status)}, cl)
}

func (h *Hub) handleStatus(cl *client) {
	if cl.role != models.RoleStudent {
		h.sendError(cl, "student message only")
		return
	}

	status, marked, err := h.coordinator.Status(cl.classID, cl.userID)
	if err != nil {
		h.sendError(cl, "no active attendance session")
		return
	}
	if !marked {
		if err := cl.write(Message{Type: "status", StudentID: cl.userID, Reason: "not marked yet"}); err != nil {
			h.drop(cl)
		}
		return
	}
	if err := cl.write(Message{Type: "status", StudentID: cl.userID, Status: string(status)}); err != nil {
		h.drop(cl)
	}
}

func (h *Hub) handleSummary(cl *client) {
	if cl.role != models.RoleTeacher {
		h.sendError(cl, "teacher message only")
		return
	}

	summary, err := h.coordinator.Summary(cl.classID)
	if err != nil {
		h.sendError(cl, "no active attendance session")
		return
	}
	h.broadcast(cl.classID, Message{
		Type:    "summary",
		Present: summary.Present,
		Absent:  summary.Absent,
		Total:   summary.Total,
	}, nil)
}

func (h *Hub) handleEnd(cl *client) {
	if cl.role != models.RoleTeacher {
		h.sendError(cl, "teacher message only")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	summary, err := h.coordinator.End(ctx, cl.classID)
	if err == session.ErrNotOpen {
		h.sendError(cl, "no active attendance session")
		return
	}
	// The session is gone either way, so the room always learns what
	// was flushed. Failures ride along rather than being dropped.
	msg := Message{
		Type:    "closed",
		Present: summary.Present,
		Absent:  summary.Absent,
		Total:   summary.Total,
		Failed:  summary.Failed,
	}
	if err != nil {
		msg.Reason = "some attendance records could not be written"
	}
	h.broadcast(cl.classID, msg, nil)
}

// onRoster reports whether studentID is enrolled in the class.
func (h *Hub) onRoster(classID, studentID string) bool {
	cid, err := primitive.ObjectIDFromHex(classID)
	if err != nil {
		return false
	}
	sid, err := primitive.ObjectIDFromHex(studentID)
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	class, err := h.classes.FindByID(ctx, cid)
	if err != nil {
		return false
	}
	return class.HasStudent(sid)
}

// broadcast sends to every client in the room except skip.
func (h *Hub) broadcast(classID string, msg Message, skip *client) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.rooms[classID]))
	for cl := range h.rooms[classID] {
		if cl != skip {
			targets = append(targets, cl)
		}
	}
	h.mu.Unlock()

	for _, cl := range targets {
		if err := cl.write(msg); err != nil {
			h.drop(cl)
		}
	}
}

func (h *Hub) sendError(cl *client, reason string) {
	if err := cl.write(Message{Type: "error", Reason: reason}); err != nil {
		h.drop(cl)
	}
}

func (h *Hub) drop(cl *client) {
	h.leave(cl)
	cl.conn.Close()
}
