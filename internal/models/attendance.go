package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is an attendance mark. StatusUnset means a record exists but no
// mark was recorded; absence of a record means "not marked yet".
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusUnset   Status = "unset"
)

// ParseStatus accepts the marks a client may submit. Unset is not
// submittable, it only appears in stored records.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPresent:
		return StatusPresent, nil
	case StatusAbsent:
		return StatusAbsent, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

type Attendance struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ClassID   primitive.ObjectID `bson:"classId" json:"classId"`
	StudentID primitive.ObjectID `bson:"studentId" json:"studentId"`
	Status    Status             `bson:"status" json:"status"`
}
