package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
)

type CreateOrderRequest struct {
	UserID    string
	UserName  string
	UserEmail string
	Courses   []domain.CourseLineItem
}

type CreateOrderResponse struct {
	OrderID  string // gateway order id the client completes payment against
	Amount   int64
	Currency string
}

// CreateOrder reserves every course in the request, verifies the buyer
// is not already enrolled, creates the gateway order and persists a
// pending payment record. The reservations only serialize simultaneous
// checkout attempts; they are released on every path and are not part
// of the storage transaction.
func (s *ServiceImpl) CreateOrder(ctx context.Context, request *CreateOrderRequest) (*CreateOrderResponse, error) {
	if len(request.Courses) == 0 {
		return nil, ErrEmptyOrder
	}

	acquired := make([]string, 0, len(request.Courses))
	defer func() {
		// Release must run even when ctx is already cancelled; expiry
		// is the safety net if this fails too.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for _, courseID := range acquired {
			s.locks.Release(releaseCtx, request.UserID, courseID)
		}
	}()

	for _, course := range request.Courses {
		if err := s.locks.Acquire(ctx, request.UserID, course.CourseID, s.lockTTL); err != nil {
			return nil, err
		}
		acquired = append(acquired, course.CourseID)
	}

	var total int64
	for _, course := range request.Courses {
		total += course.Price
	}

	var response *CreateOrderResponse
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, course := range request.Courses {
			enrolled, err := s.enrollments.IsEnrolled(txCtx, request.UserID, course.CourseID)
			if err != nil {
				return fmt.Errorf("failed to check enrollment for course %s: %w", course.CourseID, err)
			}
			if enrolled {
				return ErrAlreadyEnrolled
			}
		}

		// The gateway call cannot be rolled back; the pending record
		// write is the only step after it, so a failure here leaves at
		// worst an orphaned gateway order, never local state.
		order, err := s.gateway.CreateOrder(txCtx, total, s.currency)
		if err != nil {
			return err
		}

		record := &domain.PaymentRecord{
			UserID:        request.UserID,
			UserName:      request.UserName,
			UserEmail:     request.UserEmail,
			OrderID:       order.ID,
			OrderStatus:   domain.PaymentStatusPending,
			PaymentStatus: domain.PaymentStatusPending,
			Courses:       request.Courses,
			Amount:        total,
		}
		if err := s.payments.Create(txCtx, record); err != nil {
			return err
		}

		response = &CreateOrderResponse{
			OrderID:  order.ID,
			Amount:   order.Amount,
			Currency: order.Currency,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("checkout order created user=%s order=%s amount=%d", request.UserID, response.OrderID, response.Amount)
	return response, nil
}
