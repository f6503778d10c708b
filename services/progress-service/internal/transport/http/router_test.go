package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kursus/services/progress-service/config"
	"kursus/services/progress-service/internal/application"
	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/infrastructure/certnumber"
	"kursus/services/progress-service/internal/infrastructure/events"
	"kursus/services/progress-service/internal/infrastructure/metrics"
	"kursus/services/progress-service/internal/infrastructure/repository"
	"kursus/services/progress-service/internal/infrastructure/security"
	"kursus/services/progress-service/internal/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog map[string]*domain.Course

func (s stubCatalog) ResolveCourse(_ context.Context, id string) (*domain.Course, error) {
	return s[id], nil
}

type testServer struct {
	router *gin.Engine
	tokens *security.TokenValidator
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T, verifyLimit int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()

	db, err := repository.Open(config.Config{
		DBDriver: "sqlite",
		DBDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, log)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repository.Migrate(db))

	profiles := repository.NewProfileRepository(db)
	require.NoError(t, profiles.Save(context.Background(), &domain.Profile{
		ID: "learner-1", Email: "budi@example.com", Username: "budi", FullName: "Budi Santoso",
	}))

	catalog := stubCatalog{
		"nextjs-dasar": {ID: "nextjs-dasar", Title: "Next.js Dasar", TotalLessons: 2, LessonIDs: []string{"pengenalan", "instalasi"}},
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	progress := application.NewProgressService(repository.NewProgressRepository(db), catalog, m, log)
	certStore := repository.NewCertificateRepository(db)
	certs := application.NewCertificateService(application.CertificateDeps{
		Progress:     progress,
		Certificates: certStore,
		Catalog:      catalog,
		Profiles:     profiles,
		Numbers:      certnumber.NewRandomGenerator(),
		Events:       events.NoopPublisher{},
		Metrics:      m,
		Log:          log,
	})
	verifier := application.NewVerifierService(certStore, m, log)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := security.NewTokenValidator("test-secret")
	router := NewRouter(RouterConfig{
		ServiceName:     "progress-service",
		VerifyRateLimit: verifyLimit,
		Health:          func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
		Metrics:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	},
		NewProgressHandler(progress, log),
		NewCertificateHandler(certs, verifier, log),
		tokens,
		NewRateLimiter(rdb),
		log,
	)
	return &testServer{router: router, tokens: tokens, redis: mr}
}

func (s *testServer) do(t *testing.T, method, path, userID string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		token, err := s.tokens.Sign(userID, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &body)
	}
	return w, body
}

func TestProgressAndCertificateFlow(t *testing.T) {
	s := newTestServer(t, 100)

	w, body := s.do(t, http.MethodPost, "/api/v1/courses/nextjs-dasar/lessons/pengenalan/complete", "learner-1")
	require.Equal(t, http.StatusOK, w.Code)
	progress := body["progress"].(map[string]interface{})
	assert.Equal(t, 50.0, progress["percentage"])
	assert.Equal(t, "pengenalan", progress["last_completed_lesson_id"])

	w, body = s.do(t, http.MethodGet, "/api/v1/courses/nextjs-dasar/certificate/eligibility", "learner-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["eligible"])
	assert.Equal(t, 50.0, body["percentage"])

	w, body = s.do(t, http.MethodPost, "/api/v1/courses/nextjs-dasar/certificate", "learner-1")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 50.0, body["percentage"])
	assert.Contains(t, body["error"], "50")

	w, _ = s.do(t, http.MethodPost, "/api/v1/courses/nextjs-dasar/lessons/instalasi/complete", "learner-1")
	require.Equal(t, http.StatusOK, w.Code)

	w, body = s.do(t, http.MethodPost, "/api/v1/courses/nextjs-dasar/certificate", "learner-1")
	require.Equal(t, http.StatusCreated, w.Code)
	id := body["certificate_id"].(string)
	number := body["certificate_number"].(string)
	assert.True(t, certnumber.Valid(number))
	assert.Equal(t, "/sertifikat/"+id, body["download_url"])

	w, body = s.do(t, http.MethodPost, "/api/v1/courses/nextjs-dasar/certificate", "learner-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, body["certificate_id"])
	assert.Equal(t, true, body["already_issued"])

	w, body = s.do(t, http.MethodGet, "/api/v1/courses/nextjs-dasar/certificate", "learner-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Budi Santoso", body["user_name"])
	assert.Equal(t, "Next.js Dasar", body["course_title"])

	w, body = s.do(t, http.MethodGet, "/api/v1/public/certificates/verify?number=%20"+number+"%20", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["valid"])
	cert := body["certificate"].(map[string]interface{})
	assert.Equal(t, "nextjs-dasar", cert["course_id"])
	assert.NotContains(t, cert, "user_id")

	w, _ = s.do(t, http.MethodGet, "/api/v1/certificates/"+id, "learner-1")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/v1/certificates/"+id, "learner-2")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProgressEndpoints(t *testing.T) {
	s := newTestServer(t, 100)

	w, body := s.do(t, http.MethodGet, "/api/v1/courses/nextjs-dasar/lessons/pengenalan/progress", "learner-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["completed"])

	s.do(t, http.MethodPost, "/api/v1/courses/nextjs-dasar/lessons/pengenalan/complete", "learner-1")
	s.do(t, http.MethodPost, "/api/v1/courses/unknown/lessons/x/complete", "learner-1")

	w, body = s.do(t, http.MethodGet, "/api/v1/courses/nextjs-dasar/lessons/pengenalan/progress", "learner-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["completed"])

	w, body = s.do(t, http.MethodGet, "/api/v1/progress", "learner-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["courses"], 2)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/courses/nextjs-dasar/progress", "learner-1")
	require.Equal(t, http.StatusNoContent, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/v1/courses/nextjs-dasar/progress", "learner-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, body["completed_lessons"])
	assert.Equal(t, 2.0, body["total_lessons"])
	assert.Nil(t, body["last_completed_lesson_id"])
}

func TestCertificateLookupsNotFound(t *testing.T) {
	s := newTestServer(t, 100)

	w, _ := s.do(t, http.MethodGet, "/api/v1/courses/nextjs-dasar/certificate", "learner-1")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body := s.do(t, http.MethodGet, "/api/v1/public/certificates/verify?number=CERT-00000000", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["valid"])

	w, _ = s.do(t, http.MethodGet, "/api/v1/public/certificates/verify?number=%20%20", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverlongIdentifiersAreBadRequests(t *testing.T) {
	s := newTestServer(t, 100)
	longKey := strings.Repeat("k", 129)

	w, _ := s.do(t, http.MethodPost, "/api/v1/courses/"+longKey+"/lessons/pengenalan/complete", "learner-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/courses/nextjs-dasar/certificate", strings.Repeat("u", 65))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/public/certificates/verify?number="+longKey, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, 100)

	w, _ := s.do(t, http.MethodGet, "/api/v1/progress", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	foreign, err := security.NewTokenValidator("other").Sign("learner-1", time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil)
	req.Header.Set("Authorization", "Bearer "+foreign)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyIsRateLimited(t *testing.T) {
	s := newTestServer(t, 2)
	path := "/api/v1/public/certificates/verify?number=CERT-00000000"

	for i := 0; i < 2; i++ {
		w, _ := s.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
	w, _ := s.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	s.redis.FastForward(time.Minute + time.Second)
	w, _ = s.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	s := newTestServer(t, 1)
	s.redis.Close()

	for i := 0; i < 3; i++ {
		w, _ := s.do(t, http.MethodGet, "/api/v1/public/certificates/verify?number=CERT-00000000", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, 100)

	w, body := s.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	s.do(t, http.MethodPost, "/api/v1/courses/nextjs-dasar/lessons/pengenalan/complete", "learner-1")
	w, _ = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "progress_lesson_completions_total 1"))
}
