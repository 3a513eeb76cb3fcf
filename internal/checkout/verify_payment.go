package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/gateway"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/repository"
)

type VerifyPaymentRequest struct {
	PaymentID string // gateway payment id from the callback
	OrderID   string // gateway order id from the callback
}

type VerifyPaymentResponse struct {
	Success bool
}

// VerifyPayment converts a captured payment into a durable enrollment.
// The callback ids are attacker-controlled, so capture status is always
// re-fetched from the gateway. Steps after the capture check run in one
// transaction: the record is never left completed without the
// enrollment, and no enrollment exists without a completed record.
func (s *ServiceImpl) VerifyPayment(ctx context.Context, request *VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	payment, err := s.gateway.FetchPayment(ctx, request.PaymentID)
	if err != nil {
		if errors.Is(err, gateway.ErrPaymentNotFound) {
			return nil, fmt.Errorf("%w: gateway does not know payment %s", ErrPaymentNotCaptured, request.PaymentID)
		}
		return nil, err
	}
	if payment.OrderID != "" && payment.OrderID != request.OrderID {
		// Callback pairs a payment with an order it does not belong to.
		log.Printf("SUSPICIOUS verify: payment %s belongs to order %s, callback claims %s", request.PaymentID, payment.OrderID, request.OrderID)
		return nil, fmt.Errorf("%w: payment does not belong to order %s", ErrPaymentNotCaptured, request.OrderID)
	}
	if !payment.Captured() {
		if payment.Failed() {
			s.markAttemptFailed(ctx, request.OrderID)
		}
		return nil, fmt.Errorf("%w: gateway reports status %q", ErrPaymentNotCaptured, payment.Status)
	}

	existing, err := s.payments.GetByOrderID(ctx, request.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			// A callback for an order this system never created.
			log.Printf("SUSPICIOUS verify: no payment record for order %s (payment %s)", request.OrderID, request.PaymentID)
		}
		return nil, err
	}
	if existing.PaymentStatus.IsTerminal() {
		if existing.PaymentID == payment.ID {
			// Duplicated gateway callback; verification already
			// committed, so this replay is a successful no-op.
			return &VerifyPaymentResponse{Success: true}, nil
		}
		log.Printf("SUSPICIOUS verify: order %s already completed with payment %s, callback carries %s", request.OrderID, existing.PaymentID, payment.ID)
		return nil, repository.ErrRecordNotFound
	}

	var record *domain.PaymentRecord
	var replayed bool
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		completed, err := s.payments.MarkCompleted(txCtx, request.OrderID, payment.ID)
		if err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return s.resolveCompletionMiss(txCtx, request.OrderID, payment.ID, &replayed)
			}
			return err
		}
		record = completed

		// Defends against a duplicated callback racing this one: the
		// check runs inside the same transaction as the writes below.
		for _, course := range record.Courses {
			enrolled, err := s.enrollments.IsEnrolled(txCtx, record.UserID, course.CourseID)
			if err != nil {
				return fmt.Errorf("failed to re-check enrollment for course %s: %w", course.CourseID, err)
			}
			if enrolled {
				return ErrAlreadyEnrolled
			}
		}

		if err := s.enrollments.AddCourses(txCtx, record.UserID, enrolledCourses(record)); err != nil {
			return err
		}

		for _, course := range record.Courses {
			student := domain.StudentEntry{
				StudentID:    record.UserID,
				StudentName:  record.UserName,
				StudentEmail: record.UserEmail,
				PaidAmount:   course.Price,
				JoinedAt:     record.UpdatedAt,
			}
			if err := s.catalog.AddStudent(txCtx, course.CourseID, student); err != nil {
				return fmt.Errorf("failed to add student to course %s: %w", course.CourseID, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		return &VerifyPaymentResponse{Success: true}, nil
	}

	log.Printf("payment verified user=%s order=%s payment=%s courses=%d", record.UserID, record.OrderID, record.PaymentID, len(record.Courses))

	// The in-transaction invalidation can lose to a concurrent read that
	// re-caches the pre-commit course; dropping the entries again here
	// clears any such copy.
	for _, course := range record.Courses {
		s.catalog.InvalidateCourse(ctx, course.CourseID)
	}

	if s.notifier != nil {
		s.notifier.EnrollmentCompleted(ctx, record)
	}

	return &VerifyPaymentResponse{Success: true}, nil
}

// resolveCompletionMiss handles a completion update that matched no
// pending record: a concurrent verification may have committed between
// the pre-read and this transaction. A duplicate of the same callback
// is a successful replay; anything else is rejected.
func (s *ServiceImpl) resolveCompletionMiss(ctx context.Context, orderID, paymentID string, replayed *bool) error {
	current, err := s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if current.PaymentStatus == domain.PaymentStatusCompleted {
		if current.PaymentID == paymentID {
			*replayed = true
			return nil
		}
		log.Printf("SUSPICIOUS verify: order %s completed with payment %s while callback %s was in flight", orderID, current.PaymentID, paymentID)
	}
	return repository.ErrRecordNotFound
}

// markAttemptFailed records a definitive gateway failure on the pending
// attempt. Best-effort: a missing or already terminal record is left
// alone, and a write failure only costs the status breadcrumb.
func (s *ServiceImpl) markAttemptFailed(ctx context.Context, orderID string) {
	record, err := s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			log.Printf("failed to load record for failed payment order=%s: %v", orderID, err)
		}
		return
	}
	if !record.PaymentStatus.CanTransitionTo(domain.PaymentStatusFailed) {
		return
	}
	if err := s.payments.MarkFailed(ctx, orderID); err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
		log.Printf("failed to mark payment failed order=%s: %v", orderID, err)
	}
}

func enrolledCourses(record *domain.PaymentRecord) []domain.EnrolledCourse {
	entries := make([]domain.EnrolledCourse, len(record.Courses))
	for i, course := range record.Courses {
		entries[i] = domain.EnrolledCourse{
			CourseID:        course.CourseID,
			Title:           course.Title,
			InstructorID:    course.InstructorID,
			InstructorName:  course.InstructorName,
			PriceAtPurchase: course.Price,
			DateOfPurchase:  record.UpdatedAt,
			CourseImage:     course.Image,
		}
	}
	return entries
}
