package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/payamancoders/trustcheck/internal/checker"
	"github.com/payamancoders/trustcheck/internal/credibility"
	"github.com/payamancoders/trustcheck/internal/domain"
	"github.com/payamancoders/trustcheck/internal/repository"
)

const (
	autoRejectScore     = 40
	autoRejectionPrefix = "Automated verification failed: "
)

// CredibilityAnalyzer produces a credibility verdict and never fails.
type CredibilityAnalyzer interface {
	Analyze(ctx context.Context, data credibility.CompanyData) domain.CredibilityAnalysis
}

// EventPublisher delivers status-change events. Failures are logged by the caller only.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.VerificationEvent) error
}

// VerificationService owns employer verification state transitions.
type VerificationService struct {
	employers    repository.EmployerRepository
	locker       repository.EmployerLocker
	orchestrator *Orchestrator
	analyzer     CredibilityAnalyzer
	events       EventPublisher
	snowflake    *snowflake.Node
	logger       *zap.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// NewVerificationService wires dependencies.
func NewVerificationService(employers repository.EmployerRepository, locker repository.EmployerLocker, orchestrator *Orchestrator, analyzer CredibilityAnalyzer, events EventPublisher, node *snowflake.Node, logger *zap.Logger) *VerificationService {
	if logger == nil {
		logger = zap.L()
	}
	return &VerificationService{
		employers:    employers,
		locker:       locker,
		orchestrator: orchestrator,
		analyzer:     analyzer,
		events:       events,
		snowflake:    node,
		logger:       logger,
		tracer:       otel.Tracer("github.com/payamancoders/trustcheck/internal/service"),
		now:          time.Now,
	}
}

// Submit runs the automated checks and the credibility analysis for an employer's submission
// and persists the resulting verification record in a single update.
func (s *VerificationService) Submit(ctx context.Context, employerID int64, in SubmissionInput) (*SubmissionResult, error) {
	ctx, span := s.startSpan(ctx, "VerificationService.Submit")
	defer span.End()

	in = normalizeSubmission(in)
	if err := validateSubmission(in); err != nil {
		return nil, err
	}

	employer, err := s.employers.GetByID(ctx, employerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if employer.Verification.Status == domain.StatusSuspended {
		return nil, fmt.Errorf("employer %d: %w", employerID, domain.ErrSuspended)
	}

	// slow collaborators run before the lock is taken
	draft := mergeSubmission(employer.Verification, in)
	verifyIn := VerifyInput{
		Email:                      contactEmail(employer, draft),
		CompanyName:                employer.CompanyName,
		Website:                    employer.Website,
		Description:                employer.Description,
		LinkedInProfile:            draft.LinkedInProfile,
		BusinessRegistrationNumber: draft.BusinessRegistrationNumber,
		HasDocuments:               len(employer.Verification.Documents)+len(in.Documents) > 0,
	}
	result := s.orchestrator.VerifyEmployer(ctx, verifyIn)
	analysis := s.analyzer.Analyze(ctx, companyData(employer, verifyIn, result, len(employer.Verification.Documents)+len(in.Documents)))
	outcome := decide(result, analysis)

	span.SetAttributes(
		attribute.Int64("employer.id", employerID),
		attribute.Int("verification.score", result.Score),
		attribute.Int("verification.combined_score", outcome.score),
		attribute.String("verification.status", string(outcome.status)),
	)

	updated, err := s.mutate(ctx, employerID, domain.TriggerSubmission, func(current domain.Employer) (domain.VerificationRecord, bool, error) {
		if current.Verification.Status == domain.StatusSuspended {
			return domain.VerificationRecord{}, false, fmt.Errorf("employer %d: %w", employerID, domain.ErrSuspended)
		}
		now := s.now().UTC()
		next := mergeSubmission(current.Verification, in)
		next.EmailDomain = checker.EmailDomain(verifyIn.Email)
		for _, doc := range in.Documents {
			next.Documents = append(next.Documents, domain.Document{
				ID:         s.nextID(),
				Type:       doc.Type,
				URL:        doc.URL,
				UploadedAt: now,
			})
		}
		supersedeAutomatedFlags(&next, now)
		next.Flags = append(next.Flags, result.Flags...)
		outcome.apply(&next, result.Checks, now)
		analysisCopy := analysis.Clone()
		next.AIAnalysis = &analysisCopy
		next.CredibilityLevel = analysis.CredibilityLevel
		return next, true, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.audit("verification.submitted",
		"employer_id", employerID,
		"status", updated.Verification.Status,
		"trust_score", updated.Verification.TrustScore,
		"analysis_source", analysis.Source,
	)
	return &SubmissionResult{Employer: updated, Checks: result, Analysis: analysis}, nil
}

// GetStatus returns the employer with its current verification record.
func (s *VerificationService) GetStatus(ctx context.Context, employerID int64) (domain.Employer, error) {
	ctx, span := s.startSpan(ctx, "VerificationService.GetStatus")
	defer span.End()

	employer, err := s.employers.GetByID(ctx, employerID)
	if err != nil {
		span.RecordError(err)
		return domain.Employer{}, err
	}
	return employer, nil
}

type decision struct {
	status domain.VerificationStatus
	score  int
	reason string
}

// decide merges the deterministic score with the credibility verdict.
func decide(result VerifyResult, analysis domain.CredibilityAnalysis) decision {
	combined := result.Score
	if analysis.Source == domain.SourceModel {
		combined = int(math.Round(float64(result.Score+analysis.CredibilityScore) / 2))
	}

	switch {
	case analysis.Recommendation == domain.RecommendReject || combined < autoRejectScore:
		return decision{
			status: domain.StatusRejected,
			score:  0,
			reason: autoRejectionPrefix + rejectionDetail(combined, analysis),
		}
	case result.Passed && analysis.Recommendation == domain.RecommendAutoApprove && combined >= domain.MinVerifiedTrustScore:
		return decision{status: domain.StatusVerified, score: combined}
	default:
		return decision{status: domain.StatusPending, score: combined}
	}
}

func rejectionDetail(combined int, analysis domain.CredibilityAnalysis) string {
	if analysis.Recommendation == domain.RecommendReject {
		if len(analysis.Analysis.RiskFactors) > 0 {
			return "credibility analysis recommended rejection (" + strings.Join(analysis.Analysis.RiskFactors, "; ") + ")"
		}
		return "credibility analysis recommended rejection"
	}
	return fmt.Sprintf("trust score %d is below %d", combined, autoRejectScore)
}

func (d decision) apply(record *domain.VerificationRecord, checks domain.VerificationChecks, now time.Time) {
	record.Status = d.status
	record.TrustScore = d.score
	record.Checks = checks
	switch d.status {
	case domain.StatusVerified:
		record.VerifiedAt = &now
		record.Checks.ManualReviewRequired = false
	case domain.StatusRejected:
		record.RejectedAt = &now
		record.RejectionReason = d.reason
	default:
		record.Checks.ManualReviewRequired = true
	}
}

// mutate performs one locked read-modify-write and publishes the status change once the lock is released.
func (s *VerificationService) mutate(ctx context.Context, employerID int64, trigger domain.Trigger, apply func(domain.Employer) (domain.VerificationRecord, bool, error)) (domain.Employer, error) {
	updated, previous, err := s.commit(ctx, employerID, apply)
	if err != nil {
		return updated, err
	}
	if previous != updated.Verification.Status {
		s.publish(ctx, updated, previous, trigger)
	}
	return updated, nil
}

// commit holds the employer lock for the read, apply and versioned write only.
// apply returns false when nothing changed.
func (s *VerificationService) commit(ctx context.Context, employerID int64, apply func(domain.Employer) (domain.VerificationRecord, bool, error)) (domain.Employer, domain.VerificationStatus, error) {
	release, err := s.locker.Acquire(ctx, employerID)
	if err != nil {
		return domain.Employer{}, "", err
	}
	defer release()

	current, err := s.employers.GetByID(ctx, employerID)
	if err != nil {
		return domain.Employer{}, "", err
	}
	previous := current.Verification.Status

	next, changed, err := apply(current)
	if err != nil || !changed {
		return current, previous, err
	}

	version, err := s.employers.UpdateVerification(ctx, employerID, next, current.Version)
	if err != nil {
		return domain.Employer{}, "", err
	}

	current.Verification = next
	current.Version = version
	return current, previous, nil
}

func (s *VerificationService) publish(ctx context.Context, employer domain.Employer, previous domain.VerificationStatus, trigger domain.Trigger) {
	if s.events == nil {
		return
	}
	event := domain.VerificationEvent{
		ID:             uuid.NewString(),
		EmployerID:     employer.ID,
		PreviousStatus: previous,
		Status:         employer.Verification.Status,
		TrustScore:     employer.Verification.TrustScore,
		Trigger:        trigger,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("publish verification event failed",
			zap.Int64("employer_id", employer.ID), zap.String("status", string(event.Status)), zap.Error(err))
	}
}

func normalizeSubmission(in SubmissionInput) SubmissionInput {
	in.BusinessRegistrationNumber = strings.TrimSpace(in.BusinessRegistrationNumber)
	in.LinkedInProfile = strings.TrimSpace(in.LinkedInProfile)
	in.OfficialEmail = strings.ToLower(strings.TrimSpace(in.OfficialEmail))
	docs := make([]DocumentInput, 0, len(in.Documents))
	for _, d := range in.Documents {
		docs = append(docs, DocumentInput{Type: strings.TrimSpace(d.Type), URL: strings.TrimSpace(d.URL)})
	}
	in.Documents = docs
	return in
}

func validateSubmission(in SubmissionInput) error {
	if in.OfficialEmail != "" && (strings.Index(in.OfficialEmail, "@") <= 0 || checker.EmailDomain(in.OfficialEmail) == "") {
		return fmt.Errorf("officialEmail must be an email address: %w", domain.ErrInvalidInput)
	}
	for i, d := range in.Documents {
		if d.Type == "" || d.URL == "" {
			return fmt.Errorf("documents[%d] requires type and url: %w", i, domain.ErrInvalidInput)
		}
	}
	return nil
}

// mergeSubmission applies the provided text fields; documents are appended separately.
func mergeSubmission(record domain.VerificationRecord, in SubmissionInput) domain.VerificationRecord {
	next := record.Clone()
	if in.BusinessRegistrationNumber != "" {
		next.BusinessRegistrationNumber = in.BusinessRegistrationNumber
	}
	if in.LinkedInProfile != "" {
		next.LinkedInProfile = in.LinkedInProfile
	}
	if in.OfficialEmail != "" {
		next.OfficialEmail = in.OfficialEmail
	}
	return next
}

// supersedeAutomatedFlags resolves open flags raised by an earlier automated pass.
// User reports stay open until an admin resolves them.
func supersedeAutomatedFlags(record *domain.VerificationRecord, now time.Time) {
	for i := range record.Flags {
		f := &record.Flags[i]
		if f.Resolved || f.Type == domain.FlagUserReport {
			continue
		}
		f.Resolved = true
		resolvedAt := now
		f.ResolvedAt = &resolvedAt
	}
}

func contactEmail(employer domain.Employer, record domain.VerificationRecord) string {
	if record.OfficialEmail != "" {
		return record.OfficialEmail
	}
	return strings.ToLower(strings.TrimSpace(employer.Email))
}

func companyData(employer domain.Employer, in VerifyInput, result VerifyResult, documentCount int) credibility.CompanyData {
	findings := make([]string, 0, len(result.Flags))
	for _, f := range result.Flags {
		findings = append(findings, f.Description)
	}
	return credibility.CompanyData{
		CompanyName:                employer.CompanyName,
		Email:                      in.Email,
		Website:                    employer.Website,
		LinkedInProfile:            in.LinkedInProfile,
		BusinessRegistrationNumber: in.BusinessRegistrationNumber,
		Description:                employer.Description,
		Industry:                   employer.Industry,
		FoundedYear:                employer.FoundedYear,
		Location:                   employer.Location,
		DocumentCount:              documentCount,
		EmailDomainVerified:        result.Checks.EmailDomainVerified,
		SuspiciousFindings:         findings,
	}
}

func (s *VerificationService) nextID() int64 {
	if s.snowflake == nil {
		return s.now().UnixNano()
	}
	return s.snowflake.Generate().Int64()
}

func (s *VerificationService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *VerificationService) audit(event string, attrs ...any) {
	if s.logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", s.now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	s.logger.Info("audit", fields...)
}
