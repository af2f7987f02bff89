package service

import (
	"github.com/payamancoders/trustcheck/internal/domain"
)

// DocumentInput is a supporting document reference supplied with a submission.
type DocumentInput struct {
	Type string
	URL  string
}

// SubmissionInput carries the employer-supplied verification fields. Empty fields keep
// the value already on record.
type SubmissionInput struct {
	BusinessRegistrationNumber string
	LinkedInProfile            string
	OfficialEmail              string
	Documents                  []DocumentInput
}

// SubmissionResult is the persisted outcome of a submission.
type SubmissionResult struct {
	Employer domain.Employer
	Checks   VerifyResult
	Analysis domain.CredibilityAnalysis
}

// ReviewInput is an admin moderation request.
type ReviewInput struct {
	EmployerID           int64
	Action               domain.ReviewAction
	Notes                string
	TrustScoreAdjustment *int
}

// ReportInput is a user complaint against an employer.
type ReportInput struct {
	EmployerID  int64
	Reason      string
	Description string
}
