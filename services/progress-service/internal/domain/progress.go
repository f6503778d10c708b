package domain

// CourseProgressSummary is a point-in-time view of a learner's advancement
// through a course. It is derived on every read and never persisted.
type CourseProgressSummary struct {
	CourseID              string  `json:"course_id"`
	CompletedLessons      int     `json:"completed_lessons"`
	TotalLessons          int     `json:"total_lessons"`
	Percentage            float64 `json:"percentage"`
	LastCompletedLessonID *string `json:"last_completed_lesson_id"`
}

// Eligibility is the outcome of a certificate eligibility check.
type Eligibility struct {
	Eligible   bool                  `json:"eligible"`
	Percentage int                   `json:"percentage"`
	Reason     string                `json:"reason,omitempty"`
	Summary    CourseProgressSummary `json:"progress"`
}
