package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
)

// SessionBackend adapts the class and attendance stores to the session
// coordinator, which deals in plain hex ids so it stays free of driver
// types.
type SessionBackend struct {
	Classes    ClassStore
	Attendance AttendanceStore
}

func (b SessionBackend) Roster(ctx context.Context, classID string) ([]string, error) {
	id, err := primitive.ObjectIDFromHex(classID)
	if err != nil {
		return nil, ErrNotFound
	}
	class, err := b.Classes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	roster := make([]string, 0, len(class.StudentIDs))
	for _, sid := range class.StudentIDs {
		roster = append(roster, sid.Hex())
	}
	return roster, nil
}

func (b SessionBackend) SaveStatus(ctx context.Context, classID, studentID string, status models.Status) error {
	cid, err := primitive.ObjectIDFromHex(classID)
	if err != nil {
		return ErrNotFound
	}
	sid, err := primitive.ObjectIDFromHex(studentID)
	if err != nil {
		return ErrNotFound
	}
	return b.Attendance.Upsert(ctx, cid, sid, status)
}
