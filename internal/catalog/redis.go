package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/domain"
	"github.com/redis/go-redis/v9"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 10 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, courseID string) (*domain.Course, error) {
	key := cacheKey(courseID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var course domain.Course
	if err2 := json.Unmarshal(data, &course); err2 != nil {
		return nil, fmt.Errorf("unmarshal course failed: %w", err2)
	}

	return &course, nil
}

func (r RedisCache) Set(ctx context.Context, courseID string, course *domain.Course) error {
	key := cacheKey(courseID)
	jsonCourse, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("marshal course failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(120)) * time.Second
	ttl := r.baseTTL + jitter
	if ret := r.client.Set(ctx, key, string(jsonCourse), ttl); ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, courseID string) error {
	key := cacheKey(courseID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cacheKey(courseID string) string {
	return fmt.Sprintf("course:%s", courseID)
}
