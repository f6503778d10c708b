package main

import (
	"fmt"

	"kursus/services/progress-service/internal/domain"
)

type summaryView struct {
	domain.CourseProgressSummary
}

func (v summaryView) String() string {
	last := "-"
	if v.LastCompletedLessonID != nil {
		last = *v.LastCompletedLessonID
	}
	return fmt.Sprintf("%-24s %3d/%-3d %6.1f%%  last: %s",
		v.CourseID, v.CompletedLessons, v.TotalLessons, v.Percentage, last)
}
