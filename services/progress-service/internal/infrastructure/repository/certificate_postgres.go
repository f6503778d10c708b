package repository

import (
	"context"
	"errors"
	"fmt"

	"kursus/services/progress-service/internal/domain"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create inserts the certificate in a single statement. A duplicate
// (user_id, course_id) or certificate_number comes back as
// domain.ErrConstraintViolation; the caller decides which one it was.
func (r *CertificateRepository) Create(ctx context.Context, cert *domain.Certificate) error {
	err := r.db.WithContext(ctx).Create(cert).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert certificate: %w", domain.ErrConstraintViolation)
		}
		return storeError("insert certificate", err)
	}
	return nil
}

func (r *CertificateRepository) GetByID(ctx context.Context, id string) (*domain.Certificate, error) {
	return r.first(ctx, "get certificate by id", "id = ?", id)
}

func (r *CertificateRepository) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*domain.Certificate, error) {
	return r.first(ctx, "get certificate by course", "user_id = ? AND course_id = ?", userID, courseID)
}

func (r *CertificateRepository) GetByNumber(ctx context.Context, number string) (*domain.Certificate, error) {
	return r.first(ctx, "get certificate by number", "certificate_number = ?", number)
}

// first returns nil, nil when nothing matches.
func (r *CertificateRepository) first(ctx context.Context, op, query string, args ...interface{}) (*domain.Certificate, error) {
	var cert domain.Certificate
	err := r.db.WithContext(ctx).Where(query, args...).Take(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError(op, err)
	}
	return &cert, nil
}
