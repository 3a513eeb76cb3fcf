package checkout

import (
	"context"
	"time"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/gateway"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/lock"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/repository"
)

// Catalog is the course-side collaborator the orchestrator needs: the
// denormalized student-list update plus a cache drop once that update
// is committed.
type Catalog interface {
	AddStudent(ctx context.Context, courseID string, student domain.StudentEntry) error
	InvalidateCourse(ctx context.Context, courseID string)
}

// Notifier is told about committed enrollments. Best-effort, called
// after the verify transaction commits.
type Notifier interface {
	EnrollmentCompleted(ctx context.Context, record *domain.PaymentRecord)
}

type Service interface {
	CreateOrder(ctx context.Context, request *CreateOrderRequest) (*CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, request *VerifyPaymentRequest) (*VerifyPaymentResponse, error)
}

type ServiceImpl struct {
	locks       lock.Manager
	payments    repository.PaymentRepository
	enrollments repository.EnrollmentRepository
	catalog     Catalog
	gateway     gateway.Client
	tx          repository.TxRunner
	notifier    Notifier // optional

	lockTTL  time.Duration
	currency string
}

func NewService(
	locks lock.Manager,
	payments repository.PaymentRepository,
	enrollments repository.EnrollmentRepository,
	cat Catalog,
	gw gateway.Client,
	tx repository.TxRunner,
	lockTTL time.Duration,
	currency string,
) *ServiceImpl {
	return &ServiceImpl{
		locks:       locks,
		payments:    payments,
		enrollments: enrollments,
		catalog:     cat,
		gateway:     gw,
		tx:          tx,
		lockTTL:     lockTTL,
		currency:    currency,
	}
}

// WithNotifier attaches a post-commit enrollment notifier.
func (s *ServiceImpl) WithNotifier(n Notifier) *ServiceImpl {
	s.notifier = n
	return s
}
