package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Akhand0ps/Live-Attendance-System/internal/models"
)

// MongoUserStore stores users in the "users" collection.
type MongoUserStore struct {
	c *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{c: db.Collection("users")}
}

func (s *MongoUserStore) Create(ctx context.Context, user models.User) (models.User, error) {
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.c.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	cursor, err := s.c.Find(ctx, bson.M{"role": role})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// MongoClassStore stores classes in the "classes" collection.
type MongoClassStore struct {
	c *mongo.Collection
}

func NewMongoClassStore(db *mongo.Database) *MongoClassStore {
	return &MongoClassStore{c: db.Collection("classes")}
}

func (s *MongoClassStore) Create(ctx context.Context, class models.Class) (models.Class, error) {
	now := time.Now().UTC()
	class.ID = primitive.NewObjectID()
	if class.StudentIDs == nil {
		class.StudentIDs = []primitive.ObjectID{}
	}
	class.CreatedAt = now
	class.UpdatedAt = now

	_, err := s.c.InsertOne(ctx, class)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Class{}, ErrConflict
		}
		return models.Class{}, err
	}
	return class, nil
}

func (s *MongoClassStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Class, error) {
	var class models.Class
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&class)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &class, nil
}

func (s *MongoClassStore) FindByName(ctx context.Context, className string) (*models.Class, error) {
	var class models.Class
	err := s.c.FindOne(ctx, bson.M{"className": className}).Decode(&class)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &class, nil
}

// AddStudent appends atomically; the filter excludes classes already
// containing the student so a duplicate add matches no document.
func (s *MongoClassStore) AddStudent(ctx context.Context, classID, studentID primitive.ObjectID) (*models.Class, error) {
	var class models.Class
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": classID, "studentIds": bson.M{"$ne": studentID}},
		bson.M{
			"$addToSet": bson.M{"studentIds": studentID},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&class)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			return nil, err
		}
		// No match: either the class is missing or the student is
		// already enrolled.
		if _, ferr := s.FindByID(ctx, classID); ferr != nil {
			return nil, ferr
		}
		return nil, ErrConflict
	}
	return &class, nil
}

// MongoAttendanceStore stores records in the "attendance" collection.
type MongoAttendanceStore struct {
	c *mongo.Collection
}

func NewMongoAttendanceStore(db *mongo.Database) *MongoAttendanceStore {
	return &MongoAttendanceStore{c: db.Collection("attendance")}
}

func (s *MongoAttendanceStore) Find(ctx context.Context, classID, studentID primitive.ObjectID) (*models.Attendance, error) {
	var att models.Attendance
	err := s.c.FindOne(ctx, bson.M{"classId": classID, "studentId": studentID}).Decode(&att)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &att, nil
}

func (s *MongoAttendanceStore) Upsert(ctx context.Context, classID, studentID primitive.ObjectID, status models.Status) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"classId": classID, "studentId": studentID},
		bson.M{"$set": bson.M{"status": status}},
		options.Update().SetUpsert(true),
	)
	return err
}
