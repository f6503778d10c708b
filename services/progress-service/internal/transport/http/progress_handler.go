package handlers

import (
	"context"
	"net/http"

	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/platform/logger"

	"github.com/gin-gonic/gin"
)

type ProgressUseCase interface {
	ComputeCourseProgress(ctx context.Context, userID, courseID string) (domain.CourseProgressSummary, error)
	MarkLessonCompleted(ctx context.Context, userID, courseID, lessonID string) error
	LessonStatus(ctx context.Context, userID, courseID, lessonID string) (bool, error)
	ResetCourseProgress(ctx context.Context, userID, courseID string) error
	ListCourseProgress(ctx context.Context, userID string) ([]domain.CourseProgressSummary, error)
}

type ProgressHandler struct {
	progress ProgressUseCase
	log      *logger.Logger
}

func NewProgressHandler(progress ProgressUseCase, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{progress: progress, log: log}
}

func (h *ProgressHandler) List(c *gin.Context) {
	list, err := h.progress.ListCourseProgress(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if list == nil {
		list = []domain.CourseProgressSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"courses": list})
}

func (h *ProgressHandler) GetCourse(c *gin.Context) {
	summary, err := h.progress.ComputeCourseProgress(c.Request.Context(), c.GetString(userIDKey), c.Param("courseId"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ProgressHandler) ResetCourse(c *gin.Context) {
	if err := h.progress.ResetCourseProgress(c.Request.Context(), c.GetString(userIDKey), c.Param("courseId")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProgressHandler) GetLesson(c *gin.Context) {
	courseID, lessonID := c.Param("courseId"), c.Param("lessonId")
	completed, err := h.progress.LessonStatus(c.Request.Context(), c.GetString(userIDKey), courseID, lessonID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course_id": courseID, "lesson_id": lessonID, "completed": completed})
}

// CompleteLesson marks the lesson done and answers with the refreshed course progress.
func (h *ProgressHandler) CompleteLesson(c *gin.Context) {
	ctx := c.Request.Context()
	userID, courseID, lessonID := c.GetString(userIDKey), c.Param("courseId"), c.Param("lessonId")

	if err := h.progress.MarkLessonCompleted(ctx, userID, courseID, lessonID); err != nil {
		writeError(c, h.log, err)
		return
	}
	summary, err := h.progress.ComputeCourseProgress(ctx, userID, courseID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson_id": lessonID, "completed": true, "progress": summary})
}
