package application

import (
	"context"
	"strings"

	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/infrastructure/metrics"
	"kursus/services/progress-service/internal/platform/logger"
)

// VerifierService is the public, unauthenticated read path for certificates.
// Not found is reported as nil, nil; errors mean the store failed.
type VerifierService struct {
	certs   CertificateStore
	metrics *metrics.Collectors
	log     *logger.Logger
}

func NewVerifierService(certs CertificateStore, m *metrics.Collectors, log *logger.Logger) *VerifierService {
	return &VerifierService{certs: certs, metrics: m, log: log.With("service", "VerifierService")}
}

// VerifyByNumber matches the trimmed number exactly, case-sensitively.
func (s *VerifierService) VerifyByNumber(ctx context.Context, certificateNumber string) (*domain.Certificate, error) {
	number := strings.TrimSpace(certificateNumber)
	if err := checkID(number, maxKeyLen); err != nil {
		return nil, err
	}
	cert, err := s.certs.GetByNumber(ctx, number)
	if err != nil {
		s.metrics.Verification("error")
		s.log.Error("certificate verification failed", "error", err)
		return nil, err
	}
	if cert == nil {
		s.metrics.Verification("not_found")
		return nil, nil
	}
	s.metrics.Verification("found")
	return cert, nil
}

func (s *VerifierService) GetByID(ctx context.Context, certificateID string) (*domain.Certificate, error) {
	id := strings.TrimSpace(certificateID)
	if err := checkID(id, maxKeyLen); err != nil {
		return nil, err
	}
	return s.certs.GetByID(ctx, id)
}
