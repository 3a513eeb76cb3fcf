package repository

import (
	"context"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
)

// PaymentRepository is the durable log of checkout attempts.
// Consumers define the interface, not the MongoDB implementation.
type PaymentRepository interface {
	Create(ctx context.Context, record *domain.PaymentRecord) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error)
	MarkCompleted(ctx context.Context, orderID, paymentID string) (*domain.PaymentRecord, error)
	MarkFailed(ctx context.Context, orderID string) error
}

// EnrollmentRepository is the source of truth for course access.
type EnrollmentRepository interface {
	Get(ctx context.Context, userID string) (*domain.Enrollment, error)
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	AddCourses(ctx context.Context, userID string, entries []domain.EnrolledCourse) error
}
