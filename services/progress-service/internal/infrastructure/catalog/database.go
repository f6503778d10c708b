package catalog

import (
	"context"

	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/infrastructure/repository"
)

// DatabaseCatalog serves courses from the courses/course_lessons tables.
type DatabaseCatalog struct {
	repo *repository.CourseRepository
}

func NewDatabaseCatalog(repo *repository.CourseRepository) *DatabaseCatalog {
	return &DatabaseCatalog{repo: repo}
}

func (c *DatabaseCatalog) ResolveCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	rec, err := c.repo.GetWithLessons(ctx, courseID)
	if err != nil || rec == nil {
		return nil, err
	}
	course := &domain.Course{ID: rec.ID, Title: rec.Title, TotalLessons: rec.TotalLessons}
	for _, l := range rec.Lessons {
		course.LessonIDs = append(course.LessonIDs, l.ID)
	}
	if course.TotalLessons == 0 {
		course.TotalLessons = len(course.LessonIDs)
	}
	return course, nil
}
