package lock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrLockConflict means another checkout for the same (buyer, course)
// pair is in flight. Retryable after a short delay.
var ErrLockConflict = errors.New("checkout already in progress for this course")

// Manager hands out short-lived exclusive reservations per
// (buyer, course) pair. The unique compound index is the correctness
// mechanism: a duplicate-key error on insert is the authoritative
// conflict signal. The TTL index reaps abandoned reservations, and
// Acquire additionally treats an expired reservation as released
// since Mongo's TTL reaper only runs periodically.
type Manager interface {
	Acquire(ctx context.Context, userID, courseID string, ttl time.Duration) error
	Release(ctx context.Context, userID, courseID string)
}

type mongoManager struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoManager(db *mongo.Database) Manager {
	return &mongoManager{
		collection: db.Collection("payment_locks"),
		now:        time.Now,
	}
}

func (m *mongoManager) Acquire(ctx context.Context, userID, courseID string, ttl time.Duration) error {
	if err := m.tryInsert(ctx, userID, courseID, ttl); err == nil {
		return nil
	} else if !errors.Is(err, ErrLockConflict) {
		return err
	}

	// Lazy expiry: the holder may have crashed and the TTL reaper not
	// run yet. If the existing reservation is past its expiry, clear it
	// and retry the insert once.
	var existing domain.Reservation
	filter := bson.M{"user_id": userID, "course_id": courseID}
	err := m.collection.FindOne(ctx, filter).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Released between our insert and read, try again.
			return m.tryInsert(ctx, userID, courseID, ttl)
		}
		return fmt.Errorf("failed to read existing reservation: %w", err)
	}

	if !existing.Expired(m.now()) {
		return ErrLockConflict
	}

	expired := bson.M{
		"user_id":    userID,
		"course_id":  courseID,
		"expires_at": bson.M{"$lte": m.now()},
	}
	if _, err := m.collection.DeleteOne(ctx, expired); err != nil {
		return fmt.Errorf("failed to clear expired reservation: %w", err)
	}

	return m.tryInsert(ctx, userID, courseID, ttl)
}

func (m *mongoManager) tryInsert(ctx context.Context, userID, courseID string, ttl time.Duration) error {
	now := m.now()
	reservation := &domain.Reservation{
		ID:        uuid.NewString(),
		UserID:    userID,
		CourseID:  courseID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := m.collection.InsertOne(ctx, reservation)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrLockConflict
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// Release is best-effort: a failed delete is only logged because the
// TTL expiry guarantees eventual cleanup.
func (m *mongoManager) Release(ctx context.Context, userID, courseID string) {
	filter := bson.M{"user_id": userID, "course_id": courseID}
	if _, err := m.collection.DeleteOne(ctx, filter); err != nil {
		log.Printf("failed to release reservation user=%s course=%s: %v", userID, courseID, err)
	}
}

// EnsureIndexes creates the unique compound index that enforces mutual
// exclusion and the TTL index that reaps abandoned reservations.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "course_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // expire at the stored timestamp
		},
	}

	_, err := db.Collection("payment_locks").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}

	return nil
}
