package catalog

import (
	"context"
	"errors"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
)

var ErrCourseNotFound = errors.New("course not found")

// Catalog is the course-side collaborator of the checkout pipeline:
// lookups for quoting line items and the denormalized student-list
// update performed when a payment converts into an enrollment.
type Catalog interface {
	GetCourse(ctx context.Context, courseID string) (*domain.Course, error)
	AddStudent(ctx context.Context, courseID string, student domain.StudentEntry) error
}
