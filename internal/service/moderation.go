package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/payamancoders/trustcheck/internal/domain"
)

const maxReportReasonLength = 200

// Review applies an admin moderation action. Input is validated before the record is touched.
func (s *VerificationService) Review(ctx context.Context, reviewerID int64, in ReviewInput) (domain.Employer, error) {
	ctx, span := s.startSpan(ctx, "VerificationService.Review")
	defer span.End()
	span.SetAttributes(attribute.Int64("employer.id", in.EmployerID), attribute.String("review.action", string(in.Action)))

	in.Action = domain.ReviewAction(strings.ToLower(strings.TrimSpace(string(in.Action))))
	if !in.Action.Valid() {
		return domain.Employer{}, fmt.Errorf("action %q: %w", in.Action, domain.ErrInvalidAction)
	}
	if adj := in.TrustScoreAdjustment; adj != nil && (*adj < 0 || *adj > 100) {
		return domain.Employer{}, fmt.Errorf("trustScoreAdjustment must be within 0..100: %w", domain.ErrInvalidInput)
	}
	notes := strings.TrimSpace(in.Notes)

	updated, err := s.mutate(ctx, in.EmployerID, domain.TriggerReview, func(current domain.Employer) (domain.VerificationRecord, bool, error) {
		now := s.now().UTC()
		next := current.Verification.Clone()

		switch in.Action {
		case domain.ActionApprove:
			score := next.TrustScore
			if in.TrustScoreAdjustment != nil {
				score = *in.TrustScoreAdjustment
			}
			next.Status = domain.StatusVerified
			next.VerifiedAt = &now
			next.Checks.ManualReviewRequired = false
			next.TrustScore = max(domain.MinVerifiedTrustScore, score)
		case domain.ActionReject:
			next.Status = domain.StatusRejected
			next.RejectedAt = &now
			next.RejectionReason = notes
			if next.RejectionReason == "" {
				next.RejectionReason = domain.DefaultRejectionReason
			}
			next.TrustScore = 0
		case domain.ActionSuspend:
			next.Status = domain.StatusSuspended
			next.TrustScore = 0
		case domain.ActionRequestInfo:
			next.Status = domain.StatusPending
			next.Checks.ManualReviewRequired = true
		}

		reviewer := reviewerID
		next.LastReviewedAt = &now
		next.ReviewedBy = &reviewer
		if notes != "" {
			next.Notes = notes
		}
		return next, true, nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.Employer{}, err
	}

	s.audit("verification.reviewed",
		"employer_id", in.EmployerID,
		"reviewer_id", reviewerID,
		"action", in.Action,
		"status", updated.Verification.Status,
		"trust_score", updated.Verification.TrustScore,
	)
	return updated, nil
}

// Report records a user complaint. Reaching the report threshold suspends the employer once;
// later reports while suspended only count.
func (s *VerificationService) Report(ctx context.Context, reporterID int64, in ReportInput) (domain.Employer, error) {
	ctx, span := s.startSpan(ctx, "VerificationService.Report")
	defer span.End()
	span.SetAttributes(attribute.Int64("employer.id", in.EmployerID))

	reason := strings.TrimSpace(in.Reason)
	description := strings.TrimSpace(in.Description)
	if reason == "" {
		return domain.Employer{}, fmt.Errorf("reason is required: %w", domain.ErrInvalidInput)
	}
	if len([]rune(reason)) > maxReportReasonLength {
		return domain.Employer{}, fmt.Errorf("reason is too long: %w", domain.ErrInvalidInput)
	}

	updated, err := s.mutate(ctx, in.EmployerID, domain.TriggerReport, func(current domain.Employer) (domain.VerificationRecord, bool, error) {
		now := s.now().UTC()
		next := current.Verification.Clone()
		reporter := reporterID

		next.Flags = append(next.Flags, domain.Flag{
			ID:          s.nextID(),
			Type:        domain.FlagUserReport,
			Description: fmt.Sprintf("%s: %s", reason, description),
			ReportedBy:  &reporter,
			CreatedAt:   now,
		})
		next.Reports++
		next.Checks.ManualReviewRequired = true
		next.Checks.LastCheckedAt = &now

		if next.Reports >= domain.ReportSuspensionThreshold && next.Status != domain.StatusSuspended {
			next.Status = domain.StatusSuspended
			next.TrustScore = max(0, next.TrustScore-domain.ReportSuspensionPenalty)
		}
		return next, true, nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.Employer{}, err
	}

	s.audit("verification.reported",
		"employer_id", in.EmployerID,
		"reporter_id", reporterID,
		"reports", updated.Verification.Reports,
		"status", updated.Verification.Status,
	)
	return updated, nil
}

// ResolveFlag marks a flag as handled. Flags are never removed and counters are untouched.
// Resolving an already resolved flag is a no-op.
func (s *VerificationService) ResolveFlag(ctx context.Context, reviewerID, employerID, flagID int64) (domain.Employer, error) {
	ctx, span := s.startSpan(ctx, "VerificationService.ResolveFlag")
	defer span.End()

	updated, err := s.mutate(ctx, employerID, domain.TriggerReview, func(current domain.Employer) (domain.VerificationRecord, bool, error) {
		next := current.Verification.Clone()
		for i := range next.Flags {
			flag := &next.Flags[i]
			if flag.ID != flagID {
				continue
			}
			if flag.Resolved {
				return current.Verification, false, nil
			}
			now := s.now().UTC()
			reviewer := reviewerID
			flag.Resolved = true
			flag.ResolvedAt = &now
			flag.ResolvedBy = &reviewer
			return next, true, nil
		}
		return domain.VerificationRecord{}, false, fmt.Errorf("flag %d on employer %d: %w", flagID, employerID, domain.ErrFlagNotFound)
	})
	if err != nil {
		span.RecordError(err)
		return domain.Employer{}, err
	}

	s.audit("verification.flag_resolved", "employer_id", employerID, "flag_id", flagID, "reviewer_id", reviewerID)
	return updated, nil
}

// ListEmployers returns employers in the given status, pending when empty.
func (s *VerificationService) ListEmployers(ctx context.Context, status string) ([]domain.Employer, error) {
	ctx, span := s.startSpan(ctx, "VerificationService.ListEmployers")
	defer span.End()

	filter := domain.VerificationStatus(strings.ToLower(strings.TrimSpace(status)))
	if filter == "" {
		filter = domain.StatusPending
	}
	if !filter.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, domain.ErrInvalidInput)
	}

	employers, err := s.employers.ListByStatus(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return employers, nil
}
