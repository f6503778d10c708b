package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/infrastructure/metrics"
	"kursus/services/progress-service/internal/platform/logger"

	"github.com/google/uuid"
)

// MaxNumberAttempts bounds certificate number regeneration after collisions.
const MaxNumberAttempts = 5

type CertificateService struct {
	progress *ProgressService
	certs    CertificateStore
	catalog  CatalogReader
	profiles ProfileDirectory
	numbers  NumberGenerator
	events   CertificateEvents
	metrics  *metrics.Collectors
	log      *logger.Logger

	fallbackName string
	now          func() time.Time
	newID        func() string
}

type CertificateDeps struct {
	Progress     *ProgressService
	Certificates CertificateStore
	Catalog      CatalogReader
	Profiles     ProfileDirectory
	Numbers      NumberGenerator
	Events       CertificateEvents
	Metrics      *metrics.Collectors
	Log          *logger.Logger
	FallbackName string
}

func NewCertificateService(d CertificateDeps) *CertificateService {
	name := strings.TrimSpace(d.FallbackName)
	if name == "" {
		name = "Pengguna"
	}
	return &CertificateService{
		progress:     d.Progress,
		certs:        d.Certificates,
		catalog:      d.Catalog,
		profiles:     d.Profiles,
		numbers:      d.Numbers,
		events:       d.Events,
		metrics:      d.Metrics,
		log:          d.Log.With("service", "CertificateService"),
		fallbackName: name,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// CheckEligibility is derived from current progress on every call.
func (s *CertificateService) CheckEligibility(ctx context.Context, userID, courseID string) (domain.Eligibility, error) {
	summary, err := s.progress.ComputeCourseProgress(ctx, userID, courseID)
	if err != nil {
		return domain.Eligibility{}, err
	}
	pct := int(math.Round(summary.Percentage))
	e := domain.Eligibility{Percentage: pct, Summary: summary}
	switch {
	case summary.TotalLessons <= 0:
		e.Reason = fmt.Sprintf("this course has no lessons configured (%d%% complete)", pct)
	case summary.CompletedLessons >= summary.TotalLessons:
		e.Eligible = true
	default:
		e.Reason = fmt.Sprintf("you have completed %d%% of the course; complete 100%% to receive a certificate", pct)
	}
	return e, nil
}

// ClaimCertificate issues the learner's certificate for the course, or returns
// the one already issued. Concurrent claims for the same learner and course
// all resolve to the same certificate: the store's unique (user_id, course_id)
// constraint rejects the losing insert, which is then answered by re-reading
// the winner's row.
func (s *CertificateService) ClaimCertificate(ctx context.Context, userID, courseID string) (domain.ClaimResult, error) {
	eligibility, err := s.CheckEligibility(ctx, userID, courseID)
	if err != nil {
		s.metrics.Claim("error")
		return domain.ClaimResult{}, err
	}
	if !eligibility.Eligible {
		s.metrics.Claim("not_eligible")
		return domain.ClaimResult{}, &domain.NotEligibleError{
			Percentage: eligibility.Percentage,
			Reason:     eligibility.Reason,
		}
	}

	existing, err := s.certs.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		s.metrics.Claim("error")
		return domain.ClaimResult{}, err
	}
	if existing != nil {
		s.metrics.Claim("existing")
		return existingResult(existing), nil
	}

	userName, err := s.userName(ctx, userID)
	if err != nil {
		s.metrics.Claim("error")
		return domain.ClaimResult{}, err
	}
	courseTitle := s.courseTitle(ctx, courseID)

	for attempt := 1; attempt <= MaxNumberAttempts; attempt++ {
		number, err := s.numbers.Generate()
		if err != nil {
			s.metrics.Claim("error")
			return domain.ClaimResult{}, err
		}
		now := s.now()
		cert := &domain.Certificate{
			ID:                s.newID(),
			UserID:            userID,
			CourseID:          courseID,
			CourseTitle:       courseTitle,
			UserName:          userName,
			CertificateNumber: number,
			IssueDate:         now,
			CreatedAt:         now,
		}

		err = s.certs.Create(ctx, cert)
		if err == nil {
			s.metrics.Claim("issued")
			s.log.Info("certificate issued",
				"user_id", userID, "course_id", courseID,
				"certificate_id", cert.ID, "certificate_number", cert.CertificateNumber)
			s.publish(ctx, cert)
			return domain.ClaimResult{CertificateID: cert.ID, CertificateNumber: cert.CertificateNumber}, nil
		}
		if !errors.Is(err, domain.ErrConstraintViolation) {
			s.metrics.Claim("error")
			return domain.ClaimResult{}, err
		}

		// Either a concurrent claim won the (user, course) slot or the number collided.
		winner, lookupErr := s.certs.GetByUserAndCourse(ctx, userID, courseID)
		if lookupErr != nil {
			s.metrics.Claim("error")
			return domain.ClaimResult{}, lookupErr
		}
		if winner != nil {
			s.metrics.Constraint("user_course")
			s.metrics.Claim("existing")
			s.log.Debug("concurrent claim resolved to existing certificate",
				"user_id", userID, "course_id", courseID, "certificate_id", winner.ID)
			return existingResult(winner), nil
		}
		s.metrics.Constraint("number")
		s.log.Warn("certificate number collision, regenerating",
			"course_id", courseID, "attempt", attempt, "certificate_number", number)
	}

	s.metrics.Claim("error")
	s.log.Error("certificate number attempts exhausted", "user_id", userID, "course_id", courseID)
	return domain.ClaimResult{}, fmt.Errorf("%w after %d attempts", domain.ErrCertificateNumberExhausted, MaxNumberAttempts)
}

// CertificateForCourse returns the learner's certificate, or nil.
func (s *CertificateService) CertificateForCourse(ctx context.Context, userID, courseID string) (*domain.Certificate, error) {
	if err := requireIDs(userID, courseID); err != nil {
		return nil, err
	}
	return s.certs.GetByUserAndCourse(ctx, userID, courseID)
}

func (s *CertificateService) userName(ctx context.Context, userID string) (string, error) {
	name, err := s.profiles.DisplayName(ctx, userID)
	if err != nil {
		return "", err
	}
	if name = strings.TrimSpace(name); name == "" {
		return s.fallbackName, nil
	}
	return name, nil
}

// courseTitle falls back to "Kursus <id>" if the catalog has lost the course
// between the eligibility check and issuance.
func (s *CertificateService) courseTitle(ctx context.Context, courseID string) string {
	course, err := s.catalog.ResolveCourse(ctx, courseID)
	if err != nil {
		s.log.Warn("catalog lookup failed, using fallback title", "course_id", courseID, "error", err)
	}
	if course == nil || strings.TrimSpace(course.Title) == "" {
		return "Kursus " + courseID
	}
	return course.Title
}

func (s *CertificateService) publish(ctx context.Context, cert *domain.Certificate) {
	if s.events == nil {
		return
	}
	if err := s.events.CertificateIssued(ctx, cert); err != nil {
		s.log.Warn("publish certificate issued failed", "certificate_id", cert.ID, "error", err)
	}
}

func existingResult(c *domain.Certificate) domain.ClaimResult {
	return domain.ClaimResult{
		CertificateID:     c.ID,
		CertificateNumber: c.CertificateNumber,
		AlreadyIssued:     true,
	}
}
