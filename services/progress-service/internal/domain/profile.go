package domain

import (
	"strings"
	"time"
)

// Profile is the identity provider's learner profile, read only for the
// display name snapshotted onto certificates.
type Profile struct {
	ID        string `gorm:"primaryKey;size:64"`
	Email     string `gorm:"index"`
	Username  string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Profile) TableName() string {
	return "profiles"
}

// DisplayName prefers the full name and falls back to the username. Blank
// values count as missing.
func (p *Profile) DisplayName() string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	return strings.TrimSpace(p.Username)
}
