package domain

import "time"

// LessonCompletion is one learner's completion state for one lesson of one course.
type LessonCompletion struct {
	UserID      string     `gorm:"primaryKey;size:64;index:idx_completion_user_course,priority:1"`
	CourseID    string     `gorm:"primaryKey;size:128;index:idx_completion_user_course,priority:2"`
	LessonID    string     `gorm:"primaryKey;size:128"`
	Completed   bool       `gorm:"not null;default:false"`
	CompletedAt *time.Time // set only when Completed
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (LessonCompletion) TableName() string {
	return "lesson_completions"
}
