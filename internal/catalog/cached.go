package catalog

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CachedCatalog wraps a Catalog with a read-through course cache.
// Writes go straight to the backing catalog and invalidate the cached
// course so the student list never serves stale after an enrollment.
type CachedCatalog struct {
	backing Catalog
	cache   CourseCache
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCachedCatalog(backing Catalog, cache CourseCache) *CachedCatalog {
	return &CachedCatalog{
		backing: backing,
		cache:   cache,
	}
}

func (c *CachedCatalog) GetCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	v, err, _ := c.sfg.Do(courseID, func() (interface{}, error) {

		course, err := c.cache.Get(ctx, courseID)
		if err == nil {
			return course, nil // course is in cache
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		course, errGet := c.backing.GetCourse(ctx, courseID)
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := c.cache.Set(context.Background(), courseID, course)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return course, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Course), nil
}

func (c *CachedCatalog) AddStudent(ctx context.Context, courseID string, student domain.StudentEntry) error {
	if err := c.backing.AddStudent(ctx, courseID, student); err != nil {
		return err
	}

	c.invalidate(courseID)
	return nil
}

// InvalidateCourse drops the cached course. The orchestrator calls it
// again after its enrollment transaction commits: a read racing the
// AddStudent-time invalidation can re-cache the pre-commit document,
// and only a post-commit drop clears that copy.
func (c *CachedCatalog) InvalidateCourse(ctx context.Context, courseID string) {
	if err := c.cache.Delete(ctx, courseID); err != nil {
		log.Printf("cache invalidate error: %v \n", err)
	}
}

func (c *CachedCatalog) invalidate(courseID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c.InvalidateCourse(ctx, courseID)
}
