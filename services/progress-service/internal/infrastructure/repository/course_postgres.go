package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// CourseRecord is the database-backed catalog row. TotalLessons overrides the
// lesson count when the lesson rows are not loaded into the table.
type CourseRecord struct {
	ID           string `gorm:"primaryKey;size:128"`
	Title        string `gorm:"index"`
	Description  string
	Category     string `gorm:"index"`
	Level        string
	TotalLessons int `gorm:"default:0"`

	Lessons []LessonRecord `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CourseRecord) TableName() string {
	return "courses"
}

type LessonRecord struct {
	CourseID  string `gorm:"primaryKey;size:128"`
	ID        string `gorm:"primaryKey;size:128"`
	Title     string
	SortOrder int `gorm:"index"`
	CreatedAt time.Time
}

func (LessonRecord) TableName() string {
	return "course_lessons"
}

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// GetWithLessons loads the course and its lessons in catalog order.
// It returns nil, nil for an unknown course.
func (r *CourseRepository) GetWithLessons(ctx context.Context, id string) (*CourseRecord, error) {
	var course CourseRecord
	err := r.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc, id asc")
		}).
		Take(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError("get course", err)
	}
	return &course, nil
}

func (r *CourseRepository) Create(ctx context.Context, c *CourseRecord) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return storeError("create course", err)
	}
	return nil
}

// Replace writes the course and swaps its lesson rows in one transaction.
func (r *CourseRepository) Replace(ctx context.Context, c *CourseRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", c.ID).Delete(&LessonRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Lessons").Save(c).Error; err != nil {
			return err
		}
		for i := range c.Lessons {
			c.Lessons[i].CourseID = c.ID
		}
		if len(c.Lessons) > 0 {
			return tx.Create(&c.Lessons).Error
		}
		return nil
	})
	if err != nil {
		return storeError("replace course", err)
	}
	return nil
}
