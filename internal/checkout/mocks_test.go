package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/gateway"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/lock"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/repository"
)

// fakeLocks implements lock.Manager with the same live-reservation
// semantics as the Mongo-backed manager.
type fakeLocks struct {
	mu         sync.Mutex
	held       map[string]time.Time // key -> expiry
	acquireErr error
}

func newFakeLocks() *fakeLocks {
	return &fakeLocks{held: map[string]time.Time{}}
}

func lockKey(userID, courseID string) string {
	return userID + "|" + courseID
}

func (f *fakeLocks) Acquire(_ context.Context, userID, courseID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acquireErr != nil {
		return f.acquireErr
	}
	key := lockKey(userID, courseID)
	if expiry, ok := f.held[key]; ok && time.Now().Before(expiry) {
		return lock.ErrLockConflict
	}
	f.held[key] = time.Now().Add(ttl)
	return nil
}

func (f *fakeLocks) Release(_ context.Context, userID, courseID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, lockKey(userID, courseID))
}

func (f *fakeLocks) heldCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, expiry := range f.held {
		if time.Now().Before(expiry) {
			n++
		}
	}
	return n
}

// fakePayments implements repository.PaymentRepository in memory.
// onMarkCompleted lets tests interleave a competing verification right
// before the completion update runs.
type fakePayments struct {
	mu              sync.Mutex
	byOrder         map[string]*domain.PaymentRecord
	onMarkCompleted func()
}

func newFakePayments() *fakePayments {
	return &fakePayments{byOrder: map[string]*domain.PaymentRecord{}}
}

func (f *fakePayments) Create(_ context.Context, record *domain.PaymentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byOrder[record.OrderID]; ok {
		return repository.ErrDuplicateOrder
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	clone := *record
	f.byOrder[record.OrderID] = &clone
	return nil
}

func (f *fakePayments) GetByOrderID(_ context.Context, orderID string) (*domain.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.byOrder[orderID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (f *fakePayments) MarkCompleted(_ context.Context, orderID, paymentID string) (*domain.PaymentRecord, error) {
	if f.onMarkCompleted != nil {
		f.onMarkCompleted()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.byOrder[orderID]
	if !ok || record.PaymentStatus != domain.PaymentStatusPending {
		return nil, repository.ErrRecordNotFound
	}
	record.PaymentID = paymentID
	record.OrderStatus = domain.PaymentStatusCompleted
	record.PaymentStatus = domain.PaymentStatusCompleted
	record.UpdatedAt = time.Now()
	clone := *record
	return &clone, nil
}

func (f *fakePayments) MarkFailed(_ context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.byOrder[orderID]
	if !ok || record.PaymentStatus != domain.PaymentStatusPending {
		return repository.ErrRecordNotFound
	}
	record.OrderStatus = domain.PaymentStatusFailed
	record.PaymentStatus = domain.PaymentStatusFailed
	record.UpdatedAt = time.Now()
	return nil
}

func (f *fakePayments) snapshot() map[string]*domain.PaymentRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]*domain.PaymentRecord, len(f.byOrder))
	for k, v := range f.byOrder {
		clone := *v
		out[k] = &clone
	}
	return out
}

func (f *fakePayments) restore(state map[string]*domain.PaymentRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byOrder = state
}

// fakeEnrollments implements repository.EnrollmentRepository in memory
// with the same idempotent-append semantics as the Mongo version.
type fakeEnrollments struct {
	mu     sync.Mutex
	byUser map[string]*domain.Enrollment
	addErr error
}

func newFakeEnrollments() *fakeEnrollments {
	return &fakeEnrollments{byUser: map[string]*domain.Enrollment{}}
}

func (f *fakeEnrollments) Get(_ context.Context, userID string) (*domain.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	enrollment, ok := f.byUser[userID]
	if !ok {
		return nil, repository.ErrEnrollmentNotFound
	}
	clone := *enrollment
	clone.Courses = append([]domain.EnrolledCourse(nil), enrollment.Courses...)
	return &clone, nil
}

func (f *fakeEnrollments) IsEnrolled(_ context.Context, userID, courseID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byUser[userID].Contains(courseID), nil
}

func (f *fakeEnrollments) AddCourses(_ context.Context, userID string, entries []domain.EnrolledCourse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	enrollment, ok := f.byUser[userID]
	if !ok {
		enrollment = &domain.Enrollment{UserID: userID}
		f.byUser[userID] = enrollment
	}
	for _, entry := range entries {
		if enrollment.Contains(entry.CourseID) {
			continue
		}
		enrollment.Courses = append(enrollment.Courses, entry)
	}
	return nil
}

func (f *fakeEnrollments) snapshot() map[string]*domain.Enrollment {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]*domain.Enrollment, len(f.byUser))
	for k, v := range f.byUser {
		clone := *v
		clone.Courses = append([]domain.EnrolledCourse(nil), v.Courses...)
		out[k] = &clone
	}
	return out
}

func (f *fakeEnrollments) restore(state map[string]*domain.Enrollment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser = state
}

// fakeCatalog implements the Catalog collaborator.
type fakeCatalog struct {
	mu          sync.Mutex
	students    map[string][]domain.StudentEntry
	invalidated []string
	addErr      error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{students: map[string][]domain.StudentEntry{}}
}

func (f *fakeCatalog) AddStudent(_ context.Context, courseID string, student domain.StudentEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	for _, existing := range f.students[courseID] {
		if existing.StudentID == student.StudentID {
			return nil
		}
	}
	f.students[courseID] = append(f.students[courseID], student)
	return nil
}

func (f *fakeCatalog) InvalidateCourse(_ context.Context, courseID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, courseID)
}

func (f *fakeCatalog) snapshot() map[string][]domain.StudentEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]domain.StudentEntry, len(f.students))
	for k, v := range f.students {
		out[k] = append([]domain.StudentEntry(nil), v...)
	}
	return out
}

func (f *fakeCatalog) restore(state map[string][]domain.StudentEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.students = state
}

// fakeGateway implements gateway.Client. onCreate lets tests hold the
// gateway call open to force two checkouts to overlap.
type fakeGateway struct {
	mu        sync.Mutex
	orders    int
	payments  map[string]*gateway.Payment
	createErr error
	fetchErr  error
	onCreate  func()
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{payments: map[string]*gateway.Payment{}}
}

func (f *fakeGateway) CreateOrder(_ context.Context, amount int64, currency string) (*gateway.Order, error) {
	f.mu.Lock()
	hook := f.onCreate
	err := f.createErr
	var id string
	if err == nil {
		f.orders++
		id = fmt.Sprintf("order_%d", f.orders)
	}
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return &gateway.Order{ID: id, Amount: amount, Currency: currency, Status: "created"}, nil
}

func (f *fakeGateway) FetchPayment(_ context.Context, paymentID string) (*gateway.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	payment, ok := f.payments[paymentID]
	if !ok {
		return nil, gateway.ErrPaymentNotFound
	}
	clone := *payment
	return &clone, nil
}

func (f *fakeGateway) addCapturedPayment(paymentID, orderID string, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[paymentID] = &gateway.Payment{
		ID:      paymentID,
		OrderID: orderID,
		Amount:  amount,
		Status:  gateway.PaymentCaptured,
	}
}

// fakeTxRunner rolls the in-memory stores back when fn fails,
// mirroring a Mongo transaction abort.
type fakeTxRunner struct {
	payments    *fakePayments
	enrollments *fakeEnrollments
	catalog     *fakeCatalog
}

func (f *fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	paymentsState := f.payments.snapshot()
	enrollmentsState := f.enrollments.snapshot()
	catalogState := f.catalog.snapshot()

	if err := fn(ctx); err != nil {
		f.payments.restore(paymentsState)
		f.enrollments.restore(enrollmentsState)
		f.catalog.restore(catalogState)
		return err
	}
	return nil
}

type testEnv struct {
	locks       *fakeLocks
	payments    *fakePayments
	enrollments *fakeEnrollments
	catalog     *fakeCatalog
	gateway     *fakeGateway
	service     *ServiceImpl
}

// newTestService creates a fully wired checkout service over fakes.
func newTestService() *testEnv {
	locks := newFakeLocks()
	payments := newFakePayments()
	enrollments := newFakeEnrollments()
	cat := newFakeCatalog()
	gw := newFakeGateway()
	tx := &fakeTxRunner{payments: payments, enrollments: enrollments, catalog: cat}

	service := NewService(locks, payments, enrollments, cat, gw, tx, 15*time.Second, "INR")

	return &testEnv{
		locks:       locks,
		payments:    payments,
		enrollments: enrollments,
		catalog:     cat,
		gateway:     gw,
		service:     service,
	}
}
