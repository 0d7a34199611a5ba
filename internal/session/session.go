package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Akhand0ps/Live-Attendance-System/internal/log"
	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
)

var (
	// ErrAlreadyOpen is returned when a second session is started for a
	// class whose session is still open.
	ErrAlreadyOpen = errors.New("attendance session already open")
	// ErrNotOpen is returned for marks or closes against a class with no
	// open session.
	ErrNotOpen = errors.New("no open attendance session")
)

const flushTimeout = 15 * time.Second

// Store is the coordinator's view of persistence: the roster to default
// absentees from, and the attendance records to flush into.
type Store interface {
	Roster(ctx context.Context, classID string) ([]string, error)
	SaveStatus(ctx context.Context, classID, studentID string, status models.Status) error
}

// Info is the public snapshot of an open session.
type Info struct {
	ClassID   string    `json:"classId"`
	RoomID    string    `json:"roomId"`
	StartedAt time.Time `json:"startedAt"`
}

// Summary reports the outcome of a session close. Failed lists students
// whose records could not be written; they are never silently dropped.
type Summary struct {
	ClassID string   `json:"classId"`
	Present int      `json:"present"`
	Absent  int      `json:"absent"`
	Total   int      `json:"total"`
	Failed  []string `json:"failed,omitempty"`
}

type session struct {
	info  Info
	marks map[string]models.Status
	timer *time.Timer
}

// Coordinator owns every live attendance session. All access to the
// session table and to per-session marks goes through its mutex, so
// concurrent starts for one class serialize and exactly one wins.
type Coordinator struct {
	mu       sync.Mutex
	sessions map[string]*session
	store    Store
	idle     time.Duration
}

// NewCoordinator creates a coordinator. idle > 0 enables the watchdog
// that closes sessions a teacher forgot to end.
func NewCoordinator(store Store, idle time.Duration) *Coordinator {
	return &Coordinator{
		sessions: make(map[string]*session),
		store:    store,
		idle:     idle,
	}
}

// Start transitions a class from Closed to Open. A class with an open
// session yields ErrAlreadyOpen.
func (c *Coordinator) Start(classID string) (Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, open := c.sessions[classID]; open {
		return Info{}, ErrAlreadyOpen
	}

	s := &session{
		info: Info{
			ClassID:   classID,
			RoomID:    uuid.NewString(),
			StartedAt: time.Now().UTC(),
		},
		marks: make(map[string]models.Status),
	}
	if c.idle > 0 {
		s.timer = time.AfterFunc(c.idle, func() { c.expire(classID) })
	}
	c.sessions[classID] = s

	log.Logger.Info("attendance session opened",
		zap.String("classId", classID),
		zap.String("roomId", s.info.RoomID))
	return s.info, nil
}

// Info returns the snapshot of an open session, if any.
func (c *Coordinator) Info(classID string) (Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, open := c.sessions[classID]
	if !open {
		return Info{}, false
	}
	return s.info, true
}

// Mark records a presence mark. Duplicate marks overwrite: last write
// wins, idempotent per student.
func (c *Coordinator) Mark(classID, studentID string, status models.Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, open := c.sessions[classID]
	if !open {
		return ErrNotOpen
	}
	s.marks[studentID] = status
	return nil
}

// Status returns a student's current mark in the open session.
func (c *Coordinator) Status(classID, studentID string) (models.Status, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, open := c.sessions[classID]
	if !open {
		return "", false, ErrNotOpen
	}
	status, marked := s.marks[studentID]
	return status, marked, nil
}

// Summary counts the marks collected so far in the open session.
func (c *Coordinator) Summary(classID string) (Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, open := c.sessions[classID]
	if !open {
		return Summary{}, ErrNotOpen
	}
	return tally(classID, s.marks), nil
}

// End transitions Open to Closed: the session leaves the table at once
// (a second End gets ErrNotOpen, a new Start may open a fresh session),
// unmarked roster students default to absent, and every mark is flushed
// as one attendance record. Per-student flush failures are collected in
// the summary and reported as an error.
func (c *Coordinator) End(ctx context.Context, classID string) (Summary, error) {
	c.mu.Lock()
	s, open := c.sessions[classID]
	if !open {
		c.mu.Unlock()
		return Summary{}, ErrNotOpen
	}
	delete(c.sessions, classID)
	if s.timer != nil {
		s.timer.Stop()
	}
	marks := make(map[string]models.Status, len(s.marks))
	for sid, status := range s.marks {
		marks[sid] = status
	}
	c.mu.Unlock()

	// The roster is only needed to default absentees. If the lookup
	// fails, the collected marks still flush; losing them would make
	// the close unrecoverable since the session already left the table.
	roster, rosterErr := c.store.Roster(ctx, classID)
	if rosterErr != nil {
		log.Logger.Error("roster lookup failed at session close",
			zap.String("classId", classID), zap.Error(rosterErr))
	}
	for _, sid := range roster {
		if _, marked := marks[sid]; !marked {
			marks[sid] = models.StatusAbsent
		}
	}

	summary := tally(classID, marks)
	for sid, status := range marks {
		if err := c.store.SaveStatus(ctx, classID, sid, status); err != nil {
			log.Logger.Error("attendance flush failed",
				zap.String("classId", classID),
				zap.String("studentId", sid),
				zap.Error(err))
			summary.Failed = append(summary.Failed, sid)
		}
	}

	log.Logger.Info("attendance session closed",
		zap.String("classId", classID),
		zap.Int("present", summary.Present),
		zap.Int("absent", summary.Absent),
		zap.Int("failed", len(summary.Failed)))

	switch {
	case rosterErr != nil:
		return summary, fmt.Errorf("roster unavailable, absentees not recorded: %w", rosterErr)
	case len(summary.Failed) > 0:
		return summary, fmt.Errorf("flushed %d of %d records", summary.Total-len(summary.Failed), summary.Total)
	}
	return summary, nil
}

// OpenCount reports how many sessions are currently open.
func (c *Coordinator) OpenCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *Coordinator) expire(classID string) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if _, err := c.End(ctx, classID); err != nil && err != ErrNotOpen {
		log.Logger.Error("idle session close failed",
			zap.String("classId", classID), zap.Error(err))
	}
}

func tally(classID string, marks map[string]models.Status) Summary {
	s := Summary{ClassID: classID, Total: len(marks)}
	for _, status := range marks {
		switch status {
		case models.StatusPresent:
			s.Present++
		case models.StatusAbsent:
			s.Absent++
		}
	}
	return s
}
