package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoCatalog struct {
	collection *mongo.Collection
}

func NewMongoCatalog(db *mongo.Database) Catalog {
	return &mongoCatalog{
		collection: db.Collection("courses"),
	}
}

func (m *mongoCatalog) GetCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	var course domain.Course

	err := m.collection.FindOne(ctx, bson.M{"_id": courseID}).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return &course, nil
}

// AddStudent appends the buyer to the course's denormalized student
// list. Runs inside the verify transaction when the context carries a
// session. Guarded so re-adding the same student matches nothing.
func (m *mongoCatalog) AddStudent(ctx context.Context, courseID string, student domain.StudentEntry) error {
	filter := bson.M{
		"_id": courseID,
		"students": bson.M{
			"$not": bson.M{"$elemMatch": bson.M{"student_id": student.StudentID}},
		},
	}
	update := bson.M{
		"$push": bson.M{"students": student},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to add student to course %s: %w", courseID, err)
	}
	if result.MatchedCount == 0 {
		// Either the course is gone or the student is already on it.
		// The latter is a no-op; tell the two apart.
		count, err := m.collection.CountDocuments(ctx, bson.M{"_id": courseID})
		if err != nil {
			return fmt.Errorf("failed to check course %s: %w", courseID, err)
		}
		if count == 0 {
			return ErrCourseNotFound
		}
	}
	return nil
}
