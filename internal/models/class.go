package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Class struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"_id,omitempty"`
	ClassName  string               `bson:"className" json:"className"`
	TeacherID  primitive.ObjectID   `bson:"teacherId" json:"teacherId"`
	StudentIDs []primitive.ObjectID `bson:"studentIds" json:"studentIds"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasStudent reports whether the given user id is on the roster.
func (c *Class) HasStudent(id primitive.ObjectID) bool {
	for _, sid := range c.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// RosterEntry is the populated view of an enrolled student returned by
// the class-details endpoint.
type RosterEntry struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}
