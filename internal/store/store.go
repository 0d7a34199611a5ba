package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// UserStore persists accounts. Create fails with ErrConflict when the
// email is already registered.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

// ClassStore persists classes. Create fails with ErrConflict on a
// duplicate className; AddStudent fails with ErrConflict when the
// student is already on the roster.
type ClassStore interface {
	Create(ctx context.Context, class models.Class) (models.Class, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Class, error)
	FindByName(ctx context.Context, className string) (*models.Class, error)
	AddStudent(ctx context.Context, classID, studentID primitive.ObjectID) (*models.Class, error)
}

// AttendanceStore keeps at most one record per (class, student) pair.
type AttendanceStore interface {
	Find(ctx context.Context, classID, studentID primitive.ObjectID) (*models.Attendance, error)
	Upsert(ctx context.Context, classID, studentID primitive.ObjectID, status models.Status) error
}
