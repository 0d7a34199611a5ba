package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
)

// Memory is a map-backed store for dev and tests. It honors the same
// uniqueness invariants the mongo indexes enforce.
type Memory struct {
	mu         sync.Mutex
	users      map[primitive.ObjectID]models.User
	classes    map[primitive.ObjectID]models.Class
	attendance map[string]models.Attendance // classID.Hex + "/" + studentID.Hex
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[primitive.ObjectID]models.User),
		classes:    make(map[primitive.ObjectID]models.Class),
		attendance: make(map[string]models.Attendance),
	}
}

func attKey(classID, studentID primitive.ObjectID) string {
	return classID.Hex() + "/" + studentID.Hex()
}

func (m *Memory) Create(ctx context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return models.User{}, ErrConflict
		}
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	return user, nil
}

func (m *Memory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// Classes returns the Memory store viewed as a ClassStore. The same
// instance backs all three interfaces.
func (m *Memory) CreateClass(ctx context.Context, class models.Class) (models.Class, error) {
	return m.classCreate(class)
}

func (m *Memory) classCreate(class models.Class) (models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.classes {
		if c.ClassName == class.ClassName {
			return models.Class{}, ErrConflict
		}
	}
	now := time.Now().UTC()
	class.ID = primitive.NewObjectID()
	if class.StudentIDs == nil {
		class.StudentIDs = []primitive.ObjectID{}
	}
	class.CreatedAt = now
	class.UpdatedAt = now
	m.classes[class.ID] = class
	return class, nil
}

func (m *Memory) findClassByID(id primitive.ObjectID) (*models.Class, error) {
	c, ok := m.classes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cc := c
	cc.StudentIDs = append([]primitive.ObjectID(nil), c.StudentIDs...)
	return &cc, nil
}

func (m *Memory) FindClassByID(ctx context.Context, id primitive.ObjectID) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findClassByID(id)
}

func (m *Memory) FindClassByName(ctx context.Context, className string) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.classes {
		if c.ClassName == className {
			return m.findClassByID(id)
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) AddStudent(ctx context.Context, classID, studentID primitive.ObjectID) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[classID]
	if !ok {
		return nil, ErrNotFound
	}
	if c.HasStudent(studentID) {
		return nil, ErrConflict
	}
	c.StudentIDs = append(c.StudentIDs, studentID)
	c.UpdatedAt = time.Now().UTC()
	m.classes[classID] = c
	return m.findClassByID(classID)
}

func (m *Memory) FindAttendance(ctx context.Context, classID, studentID primitive.ObjectID) (*models.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attendance[attKey(classID, studentID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) UpsertAttendance(ctx context.Context, classID, studentID primitive.ObjectID, status models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := attKey(classID, studentID)
	a, ok := m.attendance[key]
	if !ok {
		a = models.Attendance{
			ID:        primitive.NewObjectID(),
			ClassID:   classID,
			StudentID: studentID,
		}
	}
	a.Status = status
	m.attendance[key] = a
	return nil
}

// memoryClasses and memoryAttendance adapt Memory to the narrower store
// interfaces without duplicating state.
type memoryClasses struct{ m *Memory }

func (s memoryClasses) Create(ctx context.Context, class models.Class) (models.Class, error) {
	return s.m.CreateClass(ctx, class)
}

func (s memoryClasses) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Class, error) {
	return s.m.FindClassByID(ctx, id)
}

func (s memoryClasses) FindByName(ctx context.Context, className string) (*models.Class, error) {
	return s.m.FindClassByName(ctx, className)
}

func (s memoryClasses) AddStudent(ctx context.Context, classID, studentID primitive.ObjectID) (*models.Class, error) {
	return s.m.AddStudent(ctx, classID, studentID)
}

type memoryAttendance struct{ m *Memory }

func (s memoryAttendance) Find(ctx context.Context, classID, studentID primitive.ObjectID) (*models.Attendance, error) {
	return s.m.FindAttendance(ctx, classID, studentID)
}

func (s memoryAttendance) Upsert(ctx context.Context, classID, studentID primitive.ObjectID, status models.Status) error {
	return s.m.UpsertAttendance(ctx, classID, studentID, status)
}

// Users returns the UserStore view.
func (m *Memory) Users() UserStore { return m }

// Classes returns the ClassStore view.
func (m *Memory) Classes() ClassStore { return memoryClasses{m} }

// Attendance returns the AttendanceStore view.
func (m *Memory) Attendance() AttendanceStore { return memoryAttendance{m} }
