package repository

import (
	"context"
	"errors"
	"strings"

	"kursus/services/progress-service/internal/domain"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// DisplayName returns "" when the learner has no profile row.
func (r *ProfileRepository) DisplayName(ctx context.Context, userID string) (string, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).Where("id = ?", userID).Take(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", storeError("get profile", err)
	}
	return strings.TrimSpace(profile.DisplayName()), nil
}

func (r *ProfileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return storeError("save profile", err)
	}
	return nil
}
