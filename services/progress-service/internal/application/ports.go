package application

import (
	"context"

	"kursus/services/progress-service/internal/domain"
)

type ProgressStore interface {
	Upsert(ctx context.Context, userID, courseID, lessonID string) error
	ListByCourse(ctx context.Context, userID, courseID string) ([]domain.LessonCompletion, error)
	ListByUser(ctx context.Context, userID string) ([]domain.LessonCompletion, error)
	// Get returns nil, nil when there is no row.
	Get(ctx context.Context, userID, courseID, lessonID string) (*domain.LessonCompletion, error)
	DeleteByCourse(ctx context.Context, userID, courseID string) (int64, error)
}

// CertificateStore must enforce uniqueness of (user_id, course_id) and of
// certificate_number, reporting either as domain.ErrConstraintViolation.
// Lookups return nil, nil when nothing matches.
type CertificateStore interface {
	Create(ctx context.Context, cert *domain.Certificate) error
	GetByID(ctx context.Context, id string) (*domain.Certificate, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID string) (*domain.Certificate, error)
	GetByNumber(ctx context.Context, number string) (*domain.Certificate, error)
}

// CatalogReader returns nil, nil for an unknown course.
type CatalogReader interface {
	ResolveCourse(ctx context.Context, courseID string) (*domain.Course, error)
}

// ProfileDirectory returns "" when the learner has no usable name.
type ProfileDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

type NumberGenerator interface {
	Generate() (string, error)
}

type CertificateEvents interface {
	CertificateIssued(ctx context.Context, cert *domain.Certificate) error
}
