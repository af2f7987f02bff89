package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/payamancoders/trustcheck/internal/checker"
	"github.com/payamancoders/trustcheck/internal/domain"
	"github.com/payamancoders/trustcheck/internal/scoring"
)

const (
	minRegistrationLength = 6
	maxAutomatedFlags     = 2
	passingScore          = 50
)

// EmailDomainChecker reports whether an email's domain can receive business mail.
type EmailDomainChecker interface {
	VerifyEmailDomain(ctx context.Context, email string) bool
}

// VerifyInput is what the automated checks look at.
type VerifyInput struct {
	Email                      string
	CompanyName                string
	Website                    string
	Description                string
	LinkedInProfile            string
	BusinessRegistrationNumber string
	HasDocuments               bool
}

// VerifyResult is the outcome of one automated verification pass.
type VerifyResult struct {
	Passed      bool
	Score       int
	Checks      domain.VerificationChecks
	Flags       []domain.Flag
	DomainMatch bool
}

// Orchestrator runs the deterministic checks and scores them.
type Orchestrator struct {
	emails    EmailDomainChecker
	snowflake *snowflake.Node
	now       func() time.Time
}

// NewOrchestrator wires dependencies.
func NewOrchestrator(emails EmailDomainChecker, node *snowflake.Node) *Orchestrator {
	return &Orchestrator{emails: emails, snowflake: node, now: time.Now}
}

// VerifyEmployer never fails; every sub-check resolves its own errors to a negative outcome.
func (o *Orchestrator) VerifyEmployer(ctx context.Context, in VerifyInput) VerifyResult {
	now := o.now().UTC()
	checks := domain.VerificationChecks{LastCheckedAt: &now}
	flags := make([]domain.Flag, 0, 4)
	addFlag := func(t domain.FlagType, description string) {
		flags = append(flags, domain.Flag{
			ID:          o.nextID(),
			Type:        t,
			Description: description,
			CreatedAt:   now,
		})
	}

	checks.EmailDomainVerified = o.emails != nil && o.emails.VerifyEmailDomain(ctx, in.Email)
	if !checks.EmailDomainVerified {
		addFlag(domain.FlagDomainMismatch, "Email domain could not be verified as a business domain")
	}

	domainMatch := false
	if strings.TrimSpace(in.Website) != "" && checks.EmailDomainVerified {
		domainMatch = checker.VerifyDomainMatch(in.Email, in.Website)
		checks.WebsiteVerified = domainMatch
		if !domainMatch {
			addFlag(domain.FlagDomainMismatch, "Email domain does not match company website")
		}
	}

	if strings.TrimSpace(in.LinkedInProfile) != "" {
		checks.LinkedInVerified = checker.ValidateLinkedInProfile(in.LinkedInProfile)
		if !checks.LinkedInVerified {
			addFlag(domain.FlagPatternMismatch, "LinkedIn profile URL is not a valid company or profile page")
		}
	}

	registration := strings.TrimSpace(in.BusinessRegistrationNumber)
	if len(registration) >= minRegistrationLength {
		checks.BusinessRegistryChecked = true
	}

	for _, finding := range checker.DetectSuspiciousPatterns(in.CompanyName, in.Website, in.Description) {
		addFlag(finding.Type, finding.Description)
	}

	checks.ManualReviewRequired = len(flags) > maxAutomatedFlags ||
		!checks.EmailDomainVerified ||
		(registration == "" && !in.HasDocuments)

	score := scoring.CalculateTrustScore(scoring.Inputs{
		EmailDomainVerified:     checks.EmailDomainVerified,
		BusinessRegistryChecked: checks.BusinessRegistryChecked,
		LinkedInVerified:        checks.LinkedInVerified,
		WebsiteVerified:         checks.WebsiteVerified,
		HasDocuments:            in.HasDocuments,
		DomainMatch:             domainMatch,
		FlagCount:               len(flags),
	})

	return VerifyResult{
		Passed:      score >= passingScore && !checks.ManualReviewRequired,
		Score:       score,
		Checks:      checks,
		Flags:       flags,
		DomainMatch: domainMatch,
	}
}

func (o *Orchestrator) nextID() int64 {
	if o.snowflake == nil {
		return 0
	}
	return o.snowflake.Generate().Int64()
}
