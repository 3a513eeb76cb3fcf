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
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrRecordNotFound = errors.New("payment record not found")
	ErrDuplicateOrder = errors.New("payment record already exists for order")
)

type mongoPaymentRepository struct {
	collection *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) PaymentRepository {
	return &mongoPaymentRepository{
		collection: db.Collection("payments"),
	}
}

func (m *mongoPaymentRepository) Create(ctx context.Context, record *domain.PaymentRecord) error {
	now := time.Now()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := m.collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	return nil
}

func (m *mongoPaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error) {
	var record domain.PaymentRecord

	filter := bson.M{"order_id": orderID}
	err := m.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get payment record: %w", err)
	}

	return &record, nil
}

// MarkCompleted flips both status fields together and stores the
// captured payment id. Only a pending record matches; a record that is
// already completed (or missing) yields ErrRecordNotFound so the
// caller can distinguish a replayed callback from a fresh one.
func (m *mongoPaymentRepository) MarkCompleted(ctx context.Context, orderID, paymentID string) (*domain.PaymentRecord, error) {
	filter := bson.M{
		"order_id":       orderID,
		"payment_status": domain.PaymentStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"payment_id":     paymentID,
			"order_status":   domain.PaymentStatusCompleted,
			"payment_status": domain.PaymentStatusCompleted,
			"updated_at":     time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record domain.PaymentRecord
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to mark payment completed: %w", err)
	}

	return &record, nil
}

func (m *mongoPaymentRepository) MarkFailed(ctx context.Context, orderID string) error {
	filter := bson.M{
		"order_id":       orderID,
		"payment_status": domain.PaymentStatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"order_status":   domain.PaymentStatusFailed,
			"payment_status": domain.PaymentStatusFailed,
			"updated_at":     time.Now(),
		},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}
