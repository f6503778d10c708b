package handlers

import (
	"context"
	"net/http"
	"time"

	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/platform/logger"

	"github.com/gin-gonic/gin"
)

type CertificateUseCase interface {
	CheckEligibility(ctx context.Context, userID, courseID string) (domain.Eligibility, error)
	ClaimCertificate(ctx context.Context, userID, courseID string) (domain.ClaimResult, error)
	CertificateForCourse(ctx context.Context, userID, courseID string) (*domain.Certificate, error)
}

type CertificateVerifier interface {
	VerifyByNumber(ctx context.Context, number string) (*domain.Certificate, error)
	GetByID(ctx context.Context, id string) (*domain.Certificate, error)
}

type CertificateHandler struct {
	certificates CertificateUseCase
	verifier     CertificateVerifier
	log          *logger.Logger
}

func NewCertificateHandler(certificates CertificateUseCase, verifier CertificateVerifier, log *logger.Logger) *CertificateHandler {
	return &CertificateHandler{certificates: certificates, verifier: verifier, log: log}
}

type certificateResponse struct {
	*domain.Certificate
	DownloadURL string `json:"download_url"`
}

func newCertificateResponse(cert *domain.Certificate) certificateResponse {
	return certificateResponse{Certificate: cert, DownloadURL: cert.DownloadPath()}
}

// publicCertificate is what anyone holding a certificate number may see.
type publicCertificate struct {
	CertificateNumber string    `json:"certificate_number"`
	UserName          string    `json:"user_name"`
	CourseID          string    `json:"course_id"`
	CourseTitle       string    `json:"course_title"`
	IssueDate         time.Time `json:"issue_date"`
}

func (h *CertificateHandler) Eligibility(c *gin.Context) {
	e, err := h.certificates.CheckEligibility(c.Request.Context(), c.GetString(userIDKey), c.Param("courseId"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// Claim answers 201 for a newly issued certificate and 200 when it already existed.
func (h *CertificateHandler) Claim(c *gin.Context) {
	res, err := h.certificates.ClaimCertificate(c.Request.Context(), c.GetString(userIDKey), c.Param("courseId"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	status := http.StatusCreated
	if res.AlreadyIssued {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"certificate_id":     res.CertificateID,
		"certificate_number": res.CertificateNumber,
		"already_issued":     res.AlreadyIssued,
		"download_url":       (&domain.Certificate{ID: res.CertificateID}).DownloadPath(),
	})
}

func (h *CertificateHandler) GetForCourse(c *gin.Context) {
	cert, err := h.certificates.CertificateForCourse(c.Request.Context(), c.GetString(userIDKey), c.Param("courseId"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if cert == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "certificate not issued for this course"})
		return
	}
	c.JSON(http.StatusOK, newCertificateResponse(cert))
}

// GetByID only shows learners their own certificates; others are reported as missing.
func (h *CertificateHandler) GetByID(c *gin.Context) {
	cert, err := h.verifier.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if cert == nil || cert.UserID != c.GetString(userIDKey) {
		c.JSON(http.StatusNotFound, gin.H{"error": "certificate not found"})
		return
	}
	c.JSON(http.StatusOK, newCertificateResponse(cert))
}

func (h *CertificateHandler) Verify(c *gin.Context) {
	cert, err := h.verifier.VerifyByNumber(c.Request.Context(), c.Query("number"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if cert == nil {
		c.JSON(http.StatusNotFound, gin.H{"valid": false, "error": "certificate not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"certificate": publicCertificate{
			CertificateNumber: cert.CertificateNumber,
			UserName:          cert.UserName,
			CourseID:          cert.CourseID,
			CourseTitle:       cert.CourseTitle,
			IssueDate:         cert.IssueDate,
		},
	})
}
