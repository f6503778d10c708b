package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/platform/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Reader interface {
	ResolveCourse(ctx context.Context, courseID string) (*domain.Course, error)
}

// CachedCatalog keeps resolved courses in redis. Unknown courses are not
// cached so a newly published course shows up immediately. Redis failures
// fall through to the wrapped reader.
type CachedCatalog struct {
	next  Reader
	rdb   *redis.Client
	ttl   time.Duration
	log   *logger.Logger
	group singleflight.Group
}

func NewCachedCatalog(next Reader, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedCatalog {
	return &CachedCatalog{next: next, rdb: rdb, ttl: ttl, log: log.With("component", "CachedCatalog")}
}

func cacheKey(courseID string) string {
	return "catalog:course:" + courseID
}

func (c *CachedCatalog) ResolveCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	key := cacheKey(courseID)

	val, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var course domain.Course
		if json.Unmarshal([]byte(val), &course) == nil {
			return &course, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("catalog cache read failed", "course_id", courseID, "error", err)
	}

	// The fill is shared by every waiter on the key, so one caller's
	// cancellation must not fail the others.
	fillCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		course, err := c.next.ResolveCourse(fillCtx, courseID)
		if err != nil || course == nil {
			return course, err
		}
		if data, err := json.Marshal(course); err == nil {
			if err := c.rdb.Set(fillCtx, key, data, c.ttl).Err(); err != nil {
				c.log.Warn("catalog cache write failed", "course_id", courseID, "error", err)
			}
		}
		return course, nil
	})

	var v interface{}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		v = res.Val
	}
	course, _ := v.(*domain.Course)
	if course == nil {
		return nil, nil
	}
	cp := *course
	cp.LessonIDs = append([]string(nil), course.LessonIDs...)
	return &cp, nil
}

// Invalidate drops one course from the cache.
func (c *CachedCatalog) Invalidate(ctx context.Context, courseID string) error {
	return c.rdb.Del(ctx, cacheKey(courseID)).Err()
}
