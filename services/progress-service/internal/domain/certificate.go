package domain

import "time"

// CertificatePrefix starts every certificate number.
const CertificatePrefix = "CERT-"

// Certificate is proof of course completion. CourseTitle and UserName are
// snapshots taken at issuance, so later renames never change a verified certificate.
type Certificate struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	UserID            string    `gorm:"not null;size:64;uniqueIndex:idx_certificate_user_course,priority:1" json:"user_id"`
	CourseID          string    `gorm:"not null;size:128;uniqueIndex:idx_certificate_user_course,priority:2" json:"course_id"`
	CourseTitle       string    `gorm:"not null" json:"course_title"`
	UserName          string    `gorm:"not null" json:"user_name"`
	CertificateNumber string    `gorm:"not null;size:32;uniqueIndex:idx_certificate_number" json:"certificate_number"`
	IssueDate         time.Time `gorm:"not null" json:"issue_date"`
	CreatedAt         time.Time `json:"created_at"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// DownloadPath is the printable certificate page on the public site.
func (c *Certificate) DownloadPath() string {
	return "/sertifikat/" + c.ID
}

// ClaimResult is what a successful claim hands back. AlreadyIssued is true when
// the certificate existed before this call.
type ClaimResult struct {
	CertificateID     string
	CertificateNumber string
	AlreadyIssued     bool
}
