package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/platform/logger"
)

type completionKey struct{ user, course, lesson string }

type memProgressStore struct {
	mu   sync.Mutex
	rows map[completionKey]domain.LessonCompletion
	now  func() time.Time
	err  error
}

func newMemProgressStore() *memProgressStore {
	return &memProgressStore{
		rows: make(map[completionKey]domain.LessonCompletion),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (m *memProgressStore) Upsert(_ context.Context, userID, courseID, lessonID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	now := m.now()
	k := completionKey{userID, courseID, lessonID}
	row, ok := m.rows[k]
	if !ok {
		row = domain.LessonCompletion{UserID: userID, CourseID: courseID, LessonID: lessonID, CreatedAt: now}
	}
	row.Completed = true
	row.CompletedAt = &now
	row.UpdatedAt = now
	m.rows[k] = row
	return nil
}

// put stores a row as-is so tests can control timestamps.
func (m *memProgressStore) put(row domain.LessonCompletion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[completionKey{row.UserID, row.CourseID, row.LessonID}] = row
}

func (m *memProgressStore) ListByCourse(_ context.Context, userID, courseID string) ([]domain.LessonCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.LessonCompletion
	for k, r := range m.rows {
		if k.user == userID && k.course == courseID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessonID < out[j].LessonID })
	return out, nil
}

func (m *memProgressStore) ListByUser(_ context.Context, userID string) ([]domain.LessonCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.LessonCompletion
	for k, r := range m.rows {
		if k.user == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memProgressStore) Get(_ context.Context, userID, courseID, lessonID string) (*domain.LessonCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.rows[completionKey{userID, courseID, lessonID}]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memProgressStore) DeleteByCourse(_ context.Context, userID, courseID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.rows {
		if k.user == userID && k.course == courseID {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

func (m *memProgressStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// memCertificateStore enforces the same unique keys as the real table.
type memCertificateStore struct {
	mu    sync.Mutex
	certs []domain.Certificate
	// beforeCreate, when set, runs without the lock held before each insert.
	beforeCreate func()
	creates      int
}

func (m *memCertificateStore) Create(_ context.Context, cert *domain.Certificate) error {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	for _, c := range m.certs {
		if c.UserID == cert.UserID && c.CourseID == cert.CourseID {
			return fmt.Errorf("create certificate: %w: idx_certificate_user_course", domain.ErrConstraintViolation)
		}
		if c.CertificateNumber == cert.CertificateNumber {
			return fmt.Errorf("create certificate: %w: idx_certificate_number", domain.ErrConstraintViolation)
		}
	}
	m.certs = append(m.certs, *cert)
	return nil
}

func (m *memCertificateStore) find(match func(c domain.Certificate) bool) *domain.Certificate {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.certs {
		if match(c) {
			cp := c
			return &cp
		}
	}
	return nil
}

func (m *memCertificateStore) GetByID(_ context.Context, id string) (*domain.Certificate, error) {
	return m.find(func(c domain.Certificate) bool { return c.ID == id }), nil
}

func (m *memCertificateStore) GetByUserAndCourse(_ context.Context, userID, courseID string) (*domain.Certificate, error) {
	return m.find(func(c domain.Certificate) bool { return c.UserID == userID && c.CourseID == courseID }), nil
}

func (m *memCertificateStore) GetByNumber(_ context.Context, number string) (*domain.Certificate, error) {
	return m.find(func(c domain.Certificate) bool { return c.CertificateNumber == number }), nil
}

func (m *memCertificateStore) rows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.certs)
}

type staticCatalog struct {
	courses map[string]*domain.Course
	err     error
}

func (c staticCatalog) ResolveCourse(_ context.Context, courseID string) (*domain.Course, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.courses[courseID], nil
}

func catalogOf(courses ...*domain.Course) staticCatalog {
	m := make(map[string]*domain.Course, len(courses))
	for _, c := range courses {
		m[c.ID] = c
	}
	return staticCatalog{courses: m}
}

type staticProfiles map[string]string

func (p staticProfiles) DisplayName(_ context.Context, userID string) (string, error) {
	return p[userID], nil
}

// scriptedNumbers replays fixed numbers, then falls back to a counter.
type scriptedNumbers struct {
	mu     sync.Mutex
	script []string
	n      int
}

func (g *scriptedNumbers) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.script) > 0 {
		next := g.script[0]
		g.script = g.script[1:]
		return next, nil
	}
	g.n++
	return fmt.Sprintf("CERT-%08d", g.n), nil
}

type recordingEvents struct {
	mu     sync.Mutex
	issued []string
	err    error
}

func (r *recordingEvents) CertificateIssued(_ context.Context, cert *domain.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued = append(r.issued, cert.ID)
	return r.err
}

var errBoom = errors.New("boom")

var nextjsDasar = &domain.Course{
	ID:           "nextjs-dasar",
	Title:        "Next.js Dasar",
	TotalLessons: 2,
	LessonIDs:    []string{"pengenalan", "instalasi"},
}

type fixture struct {
	progressStore *memProgressStore
	certStore     *memCertificateStore
	numbers       *scriptedNumbers
	events        *recordingEvents
	progress      *ProgressService
	certificates  *CertificateService
	verifier      *VerifierService
}

func newFixture(catalog CatalogReader, profiles ProfileDirectory) *fixture {
	f := &fixture{
		progressStore: newMemProgressStore(),
		certStore:     &memCertificateStore{},
		numbers:       &scriptedNumbers{},
		events:        &recordingEvents{},
	}
	log := logger.Nop()
	f.progress = NewProgressService(f.progressStore, catalog, nil, log)
	f.certificates = NewCertificateService(CertificateDeps{
		Progress:     f.progress,
		Certificates: f.certStore,
		Catalog:      catalog,
		Profiles:     profiles,
		Numbers:      f.numbers,
		Events:       f.events,
		Log:          log,
	})
	f.verifier = NewVerifierService(f.certStore, nil, log)
	return f
}
