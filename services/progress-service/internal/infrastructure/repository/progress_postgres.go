package repository

import (
	"context"
	"errors"
	"time"

	"kursus/services/progress-service/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Upsert marks the lesson completed. A second call for the same key refreshes
// completed_at/updated_at instead of inserting a new row.
func (r *ProgressRepository) Upsert(ctx context.Context, userID, courseID, lessonID string) error {
	now := r.now()
	row := domain.LessonCompletion{
		UserID:      userID,
		CourseID:    courseID,
		LessonID:    lessonID,
		Completed:   true,
		CompletedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"completed":    true,
			"completed_at": now,
			"updated_at":   now,
		}),
	}).Create(&row).Error
	if err != nil {
		return storeError("upsert lesson completion", err)
	}
	return nil
}

func (r *ProgressRepository) ListByCourse(ctx context.Context, userID, courseID string) ([]domain.LessonCompletion, error) {
	var rows []domain.LessonCompletion
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("lesson_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, storeError("list lesson completions", err)
	}
	return rows, nil
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]domain.LessonCompletion, error) {
	var rows []domain.LessonCompletion
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("course_id asc, lesson_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, storeError("list user completions", err)
	}
	return rows, nil
}

// Get returns nil, nil when the learner has no row for the lesson.
func (r *ProgressRepository) Get(ctx context.Context, userID, courseID, lessonID string) (*domain.LessonCompletion, error) {
	var row domain.LessonCompletion
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND lesson_id = ?", userID, courseID, lessonID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError("get lesson completion", err)
	}
	return &row, nil
}

// DeleteByCourse removes every completion row of the learner for the course.
func (r *ProgressRepository) DeleteByCourse(ctx context.Context, userID, courseID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&domain.LessonCompletion{})
	if res.Error != nil {
		return 0, storeError("reset course progress", res.Error)
	}
	return res.RowsAffected, nil
}
