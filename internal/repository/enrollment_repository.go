package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrEnrollmentNotFound = errors.New("enrollment not found")

type mongoEnrollmentRepository struct {
	collection *mongo.Collection
}

func NewMongoEnrollmentRepository(db *mongo.Database) EnrollmentRepository {
	return &mongoEnrollmentRepository{
		collection: db.Collection("enrollments"),
	}
}

func (m *mongoEnrollmentRepository) Get(ctx context.Context, userID string) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return &enrollment, nil
}

func (m *mongoEnrollmentRepository) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	filter := bson.M{
		"user_id":           userID,
		"courses.course_id": courseID,
	}

	count, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}

// AddCourses appends entries to the buyer's enrollment document.
// Idempotent: an entry whose course_id is already present matches
// nothing and is skipped, never duplicated.
func (m *mongoEnrollmentRepository) AddCourses(ctx context.Context, userID string, entries []domain.EnrolledCourse) error {
	now := time.Now()

	var existing domain.Enrollment
	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&existing)

	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("failed to check existing enrollment: %w", err)
		}

		// First enrollment for this buyer, create the document.
		enrollment := &domain.Enrollment{
			ID:        uuid.NewString(),
			UserID:    userID,
			Courses:   dedupeCourses(entries),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := m.collection.InsertOne(ctx, enrollment); err != nil {
			return fmt.Errorf("failed to create enrollment: %w", err)
		}
		return nil
	}

	for _, entry := range entries {
		guard := bson.M{
			"user_id": userID,
			"courses": bson.M{
				"$not": bson.M{"$elemMatch": bson.M{"course_id": entry.CourseID}},
			},
		}
		update := bson.M{
			"$push": bson.M{"courses": entry},
			"$set":  bson.M{"updated_at": now},
		}

		if _, err := m.collection.UpdateOne(ctx, guard, update); err != nil {
			return fmt.Errorf("failed to add course %s to enrollment: %w", entry.CourseID, err)
		}
	}

	return nil
}

func dedupeCourses(entries []domain.EnrolledCourse) []domain.EnrolledCourse {
	seen := make(map[string]bool, len(entries))
	out := make([]domain.EnrolledCourse, 0, len(entries))
	for _, e := range entries {
		if seen[e.CourseID] {
			continue
		}
		seen[e.CourseID] = true
		out = append(out, e)
	}
	return out
}
