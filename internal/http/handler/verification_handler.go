package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/payamancoders/trustcheck/internal/domain"
	"github.com/payamancoders/trustcheck/internal/http/middleware"
	"github.com/payamancoders/trustcheck/internal/service"
)

// VerificationService is the use-case surface the handlers drive.
type VerificationService interface {
	Submit(ctx context.Context, employerID int64, in service.SubmissionInput) (*service.SubmissionResult, error)
	GetStatus(ctx context.Context, employerID int64) (domain.Employer, error)
	ListEmployers(ctx context.Context, status string) ([]domain.Employer, error)
	Review(ctx context.Context, reviewerID int64, in service.ReviewInput) (domain.Employer, error)
	Report(ctx context.Context, reporterID int64, in service.ReportInput) (domain.Employer, error)
	ResolveFlag(ctx context.Context, reviewerID, employerID, flagID int64) (domain.Employer, error)
}

var _ VerificationService = (*service.VerificationService)(nil)

// VerificationHandler exposes employer verification, moderation and reporting endpoints.
type VerificationHandler struct {
	Verification VerificationService
	Logger       *zap.Logger
}

// NewVerificationHandler creates the handler set.
func NewVerificationHandler(svc VerificationService, logger *zap.Logger) *VerificationHandler {
	if logger == nil {
		logger = zap.L()
	}
	return &VerificationHandler{Verification: svc, Logger: logger}
}

type documentRequest struct {
	Type string `json:"type" binding:"required,max=64"`
	URL  string `json:"url" binding:"required,url,max=2048"`
}

type submitRequest struct {
	BusinessRegistrationNumber string            `json:"businessRegistrationNumber" binding:"max=64"`
	LinkedInProfile            string            `json:"linkedInProfile" binding:"max=512"`
	OfficialEmail              string            `json:"officialEmail" binding:"omitempty,email,max=254"`
	Documents                  []documentRequest `json:"documents" binding:"omitempty,max=20,dive"`
}

type reviewRequest struct {
	EmployerID           int64  `json:"employerId" binding:"required,gt=0"`
	Action               string `json:"action" binding:"required"`
	Notes                string `json:"notes" binding:"max=2000"`
	TrustScoreAdjustment *int   `json:"trustScoreAdjustment" binding:"omitempty,min=0,max=100"`
}

type reportRequest struct {
	EmployerID  int64  `json:"employerId" binding:"required,gt=0"`
	Reason      string `json:"reason" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

type verificationSummary struct {
	Status               domain.VerificationStatus   `json:"status"`
	TrustScore           int                         `json:"trustScore"`
	CredibilityLevel     domain.CredibilityLevel     `json:"credibilityLevel"`
	Checks               domain.VerificationChecks   `json:"checks"`
	AIAnalysis           *domain.CredibilityAnalysis `json:"aiAnalysis"`
	Flags                []domain.Flag               `json:"flags"`
	ManualReviewRequired bool                        `json:"manualReviewRequired"`
}

type companyProfile struct {
	Name        string `json:"name"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
	Industry    string `json:"industry,omitempty"`
	FoundedYear int    `json:"foundedYear,omitempty"`
	Location    string `json:"location,omitempty"`
}

type employerListItem struct {
	ID           int64                     `json:"id"`
	Name         string                    `json:"name"`
	Email        string                    `json:"email"`
	CompanyName  string                    `json:"companyName"`
	Verification domain.VerificationRecord `json:"verification"`
	RegisteredAt time.Time                 `json:"registeredAt"`
}

// SubmitVerification runs the automated verification for the calling employer.
func (h *VerificationHandler) SubmitVerification(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in := service.SubmissionInput{
		BusinessRegistrationNumber: req.BusinessRegistrationNumber,
		LinkedInProfile:            req.LinkedInProfile,
		OfficialEmail:              req.OfficialEmail,
	}
	for _, doc := range req.Documents {
		in.Documents = append(in.Documents, service.DocumentInput{Type: doc.Type, URL: doc.URL})
	}

	result, err := h.Verification.Submit(c.Request.Context(), identity.UserID, in)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	record := result.Employer.Verification
	c.JSON(http.StatusOK, gin.H{
		"message":      submissionMessage(record.Status),
		"verification": summarize(record),
	})
}

// GetVerification returns the calling employer's verification record and company profile.
func (h *VerificationHandler) GetVerification(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	employer, err := h.Verification.GetStatus(c.Request.Context(), identity.UserID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verification": employer.Verification,
		"companyProfile": companyProfile{
			Name:        employer.Name,
			CompanyName: employer.CompanyName,
			Email:       employer.Email,
			Website:     employer.Website,
			Description: employer.Description,
			Industry:    employer.Industry,
			FoundedYear: employer.FoundedYear,
			Location:    employer.Location,
		},
	})
}

// ListEmployers returns employers filtered by ?status=, pending by default.
func (h *VerificationHandler) ListEmployers(c *gin.Context) {
	employers, err := h.Verification.ListEmployers(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	items := make([]employerListItem, 0, len(employers))
	for _, e := range employers {
		items = append(items, employerListItem{
			ID:           e.ID,
			Name:         e.Name,
			Email:        e.Email,
			CompanyName:  e.CompanyName,
			Verification: e.Verification,
			RegisteredAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"employers": items})
}

// ReviewEmployer applies an admin moderation action.
func (h *VerificationHandler) ReviewEmployer(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	employer, err := h.Verification.Review(c.Request.Context(), identity.UserID, service.ReviewInput{
		EmployerID:           req.EmployerID,
		Action:               domain.ReviewAction(req.Action),
		Notes:                req.Notes,
		TrustScoreAdjustment: req.TrustScoreAdjustment,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      reviewMessage(employer.Verification.Status),
		"verification": employer.Verification,
	})
}

// ResolveFlag marks a flag on an employer as handled.
func (h *VerificationHandler) ResolveFlag(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	employerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || employerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid employer id."})
		return
	}
	flagID, err := strconv.ParseInt(c.Param("flagId"), 10, 64)
	if err != nil || flagID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid flag id."})
		return
	}

	employer, err := h.Verification.ResolveFlag(c.Request.Context(), identity.UserID, employerID, flagID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Flag resolved",
		"verification": employer.Verification,
	})
}

// ReportEmployer records a complaint from any authenticated user.
func (h *VerificationHandler) ReportEmployer(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		abortUnauthenticated(c)
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	employer, err := h.Verification.Report(c.Request.Context(), identity.UserID, service.ReportInput{
		EmployerID:  req.EmployerID,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Report submitted successfully",
		"reportCount": employer.Verification.Reports,
	})
}

// Health reports liveness.
func (h *VerificationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func summarize(record domain.VerificationRecord) verificationSummary {
	return verificationSummary{
		Status:               record.Status,
		TrustScore:           record.TrustScore,
		CredibilityLevel:     record.CredibilityLevel,
		Checks:               record.Checks,
		AIAnalysis:           record.AIAnalysis,
		Flags:                record.Flags,
		ManualReviewRequired: record.Checks.ManualReviewRequired,
	}
}

func submissionMessage(status domain.VerificationStatus) string {
	switch status {
	case domain.StatusVerified:
		return "Employer verified successfully"
	case domain.StatusRejected:
		return "Verification rejected"
	default:
		return "Verification submitted for review"
	}
}

func reviewMessage(status domain.VerificationStatus) string {
	switch status {
	case domain.StatusVerified:
		return "Employer approved successfully"
	case domain.StatusRejected:
		return "Employer rejected successfully"
	case domain.StatusSuspended:
		return "Employer suspended successfully"
	default:
		return "Additional information requested from employer"
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
}

func respondBindError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Request validation failed.", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Malformed request body."})
}

func (h *VerificationHandler) respondServiceError(c *gin.Context, err error) {
	logger := h.Logger
	switch {
	case errors.Is(err, domain.ErrEmployerNotFound):
		logger.Warn("employer not found", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "employer_not_found", "error_description": "Employer not found."})
	case errors.Is(err, domain.ErrFlagNotFound):
		logger.Warn("flag not found", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "flag_not_found", "error_description": "Flag not found."})
	case errors.Is(err, domain.ErrInvalidAction):
		logger.Warn("invalid review action", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_action", "error_description": "Action must be one of approve, reject, suspend, request_info."})
	case errors.Is(err, domain.ErrInvalidInput):
		logger.Warn("invalid verification input", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": err.Error()})
	case errors.Is(err, domain.ErrSuspended):
		logger.Warn("suspended employer resubmission", zap.Error(err))
		c.JSON(http.StatusForbidden, gin.H{"error": "account_suspended", "error_description": "Suspended accounts cannot resubmit verification."})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrLockNotObtained):
		logger.Warn("verification update contended", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "error_description": "The employer record is being updated. Retry shortly."})
	default:
		logger.Error("verification service failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Internal server error."})
	}
}
