package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/infrastructure/metrics"
	"kursus/services/progress-service/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

// catalogFanout bounds concurrent catalog lookups for the all-courses view.
const catalogFanout = 8

const (
	maxUserIDLen = 64
	maxKeyLen    = 128
)

// ProgressService aggregates per-lesson completion rows into course progress.
type ProgressService struct {
	store   ProgressStore
	catalog CatalogReader
	metrics *metrics.Collectors
	log     *logger.Logger
}

func NewProgressService(store ProgressStore, catalog CatalogReader, m *metrics.Collectors, log *logger.Logger) *ProgressService {
	return &ProgressService{
		store:   store,
		catalog: catalog,
		metrics: m,
		log:     log.With("service", "ProgressService"),
	}
}

func (s *ProgressService) ComputeCourseProgress(ctx context.Context, userID, courseID string) (domain.CourseProgressSummary, error) {
	if err := requireIDs(userID, courseID); err != nil {
		return domain.CourseProgressSummary{}, err
	}
	rows, err := s.store.ListByCourse(ctx, userID, courseID)
	if err != nil {
		return domain.CourseProgressSummary{}, err
	}
	s.metrics.ProgressRead()
	return summarize(courseID, rows, s.totalLessons(ctx, courseID)), nil
}

// MarkLessonCompleted is idempotent: repeating it leaves one row.
func (s *ProgressService) MarkLessonCompleted(ctx context.Context, userID, courseID, lessonID string) error {
	if err := requireIDs(userID, courseID, lessonID); err != nil {
		return err
	}
	if err := s.store.Upsert(ctx, userID, courseID, lessonID); err != nil {
		return err
	}
	s.metrics.LessonCompleted()
	s.log.Debug("lesson completed", "user_id", userID, "course_id", courseID, "lesson_id", lessonID)
	return nil
}

func (s *ProgressService) LessonStatus(ctx context.Context, userID, courseID, lessonID string) (bool, error) {
	if err := requireIDs(userID, courseID, lessonID); err != nil {
		return false, err
	}
	row, err := s.store.Get(ctx, userID, courseID, lessonID)
	if err != nil {
		return false, err
	}
	return row != nil && row.Completed, nil
}

// ResetCourseProgress removes all of the learner's completions for the course.
func (s *ProgressService) ResetCourseProgress(ctx context.Context, userID, courseID string) error {
	if err := requireIDs(userID, courseID); err != nil {
		return err
	}
	n, err := s.store.DeleteByCourse(ctx, userID, courseID)
	if err != nil {
		return err
	}
	s.log.Info("course progress reset", "user_id", userID, "course_id", courseID, "rows", n)
	return nil
}

// ListCourseProgress returns one summary per course the learner has touched,
// ordered by course id.
func (s *ProgressService) ListCourseProgress(ctx context.Context, userID string) ([]domain.CourseProgressSummary, error) {
	if err := requireIDs(userID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byCourse := make(map[string][]domain.LessonCompletion)
	var courseIDs []string
	for _, r := range rows {
		if _, ok := byCourse[r.CourseID]; !ok {
			courseIDs = append(courseIDs, r.CourseID)
		}
		byCourse[r.CourseID] = append(byCourse[r.CourseID], r)
	}
	sort.Strings(courseIDs)

	out := make([]domain.CourseProgressSummary, len(courseIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(catalogFanout)
	for i, courseID := range courseIDs {
		g.Go(func() error {
			out[i] = summarize(courseID, byCourse[courseID], s.totalLessons(gctx, courseID))
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// totalLessons treats an unknown course, or a catalog failure, as zero
// lessons. Progress reads never fail because of the catalog.
func (s *ProgressService) totalLessons(ctx context.Context, courseID string) int {
	course, err := s.catalog.ResolveCourse(ctx, courseID)
	if err != nil {
		s.log.Warn("catalog lookup failed", "course_id", courseID, "error", err)
		return 0
	}
	if course == nil {
		return 0
	}
	return course.TotalLessons
}

func summarize(courseID string, rows []domain.LessonCompletion, total int) domain.CourseProgressSummary {
	summary := domain.CourseProgressSummary{CourseID: courseID, TotalLessons: total}

	var last *domain.LessonCompletion
	for i := range rows {
		r := &rows[i]
		if !r.Completed {
			continue
		}
		summary.CompletedLessons++
		if last == nil ||
			r.UpdatedAt.After(last.UpdatedAt) ||
			(r.UpdatedAt.Equal(last.UpdatedAt) && r.LessonID < last.LessonID) {
			last = r
		}
	}
	if last != nil {
		id := last.LessonID
		summary.LastCompletedLessonID = &id
	}
	summary.Percentage = percentage(summary.CompletedLessons, total)
	return summary
}

// percentage is completed/total*100, 0 for an empty course and never above 100.
func percentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(completed) / float64(total) * 100
	if p > 100 {
		return 100
	}
	return p
}

// requireIDs validates a user id followed by course-scoped keys. The bounds
// follow the store column widths.
func requireIDs(userID string, keys ...string) error {
	if err := checkID(userID, maxUserIDLen); err != nil {
		return err
	}
	for _, key := range keys {
		if err := checkID(key, maxKeyLen); err != nil {
			return err
		}
	}
	return nil
}

func checkID(id string, max int) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: identifier must not be empty", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(id) > max {
		return fmt.Errorf("%w: identifier longer than %d characters", domain.ErrInvalidInput, max)
	}
	return nil
}
