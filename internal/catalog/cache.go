package catalog

import (
	"context"
	"errors"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
)

type CourseCache interface {
	Get(ctx context.Context, courseID string) (*domain.Course, error)
	Set(ctx context.Context, courseID string, course *domain.Course) error
	Delete(ctx context.Context, courseID string) error
}

var ErrCacheMiss = errors.New("cache miss")
