package credibility

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/payamancoders/trustcheck/internal/checker"
	"github.com/payamancoders/trustcheck/internal/domain"
)

const (
	trustedThreshold     = 80
	conditionalThreshold = 60
	rejectThreshold      = 40

	minRegistrationLength = 6
	detailedDescription   = 50
)

// CompanyData is everything known about the employer when it is analysed.
type CompanyData struct {
	CompanyName                string
	Email                      string
	Website                    string
	LinkedInProfile            string
	BusinessRegistrationNumber string
	Description                string
	Industry                   string
	FoundedYear                int
	Location                   string
	DocumentCount              int
	EmailDomainVerified        bool
	SuspiciousFindings         []string
}

type heuristicRule struct {
	points   int
	passed   func(CompanyData) bool
	strength string
	weakness string
}

var heuristicRules = []heuristicRule{
	{25, hasProfessionalEmail, "Uses a professional email domain", "Uses a free email provider or no email"},
	{20, hasRegistration, "Business registration number provided", "No business registration number"},
	{15, hasOnlinePresence, "Website or LinkedIn presence", "No website or LinkedIn profile"},
	{15, func(d CompanyData) bool { return d.DocumentCount > 0 }, "Supporting documents uploaded", "No supporting documents"},
	{10, hasDetailedDescription, "Detailed company description", "Company description is missing or brief"},
	{5, func(d CompanyData) bool { return strings.TrimSpace(d.Industry) != "" }, "Industry specified", "Industry not specified"},
	{5, func(d CompanyData) bool { return d.FoundedYear > 0 }, "Founding year specified", "Founding year not specified"},
	{5, func(d CompanyData) bool { return strings.TrimSpace(d.Location) != "" }, "Location specified", "Location not specified"},
}

// Heuristic scores the company without any model. It is pure and deterministic.
func Heuristic(data CompanyData) domain.CredibilityAnalysis {
	score := 0
	detail := domain.AnalysisDetail{
		Strengths:       []string{},
		Weaknesses:      []string{},
		RiskFactors:     []string{},
		Recommendations: []string{},
	}
	for _, rule := range heuristicRules {
		if rule.passed(data) {
			score += rule.points
			detail.Strengths = append(detail.Strengths, rule.strength)
			continue
		}
		detail.Weaknesses = append(detail.Weaknesses, rule.weakness)
	}

	if !hasProfessionalEmail(data) {
		detail.RiskFactors = append(detail.RiskFactors, "Identity cannot be tied to a company domain")
	}
	detail.RiskFactors = append(detail.RiskFactors, data.SuspiciousFindings...)
	if !hasRegistration(data) {
		detail.Recommendations = append(detail.Recommendations, "Provide a business registration number")
	}
	if data.DocumentCount == 0 {
		detail.Recommendations = append(detail.Recommendations, "Upload a business license or incorporation certificate")
	}
	if !hasOnlinePresence(data) {
		detail.Recommendations = append(detail.Recommendations, "Add a company website or LinkedIn page")
	}

	level, rec := Verdict(score)
	return domain.CredibilityAnalysis{
		CredibilityScore: score,
		CredibilityLevel: level,
		Recommendation:   rec,
		Analysis:         detail,
		Checks:           Facts(data),
		Reasoning:        fmt.Sprintf("Rule-based assessment: %d/100 from profile completeness and verifiable signals.", score),
		Source:           domain.SourceHeuristic,
	}
}

// Verdict maps a score to its credibility band.
func Verdict(score int) (domain.CredibilityLevel, domain.Recommendation) {
	switch {
	case score >= trustedThreshold:
		return domain.CredibilityTrusted, domain.RecommendAutoApprove
	case score >= conditionalThreshold:
		return domain.CredibilityConditional, domain.RecommendManualReview
	case score < rejectThreshold:
		return domain.CredibilityNotCredible, domain.RecommendReject
	default:
		return domain.CredibilityNotCredible, domain.RecommendManualReview
	}
}

// Facts are the checks derivable from the data alone.
func Facts(data CompanyData) domain.CredibilityChecks {
	return domain.CredibilityChecks{
		ProfessionalEmail:    hasProfessionalEmail(data),
		BusinessRegistration: hasRegistration(data),
		OnlinePresence:       hasOnlinePresence(data),
		SupportingDocuments:  data.DocumentCount > 0,
		DetailedDescription:  hasDetailedDescription(data),
		CompanyDetails:       strings.TrimSpace(data.Industry) != "" && data.FoundedYear > 0 && strings.TrimSpace(data.Location) != "",
	}
}

func hasProfessionalEmail(d CompanyData) bool {
	domainName := checker.EmailDomain(d.Email)
	return domainName != "" && !checker.IsFreeProvider(domainName)
}

func hasRegistration(d CompanyData) bool {
	return len(strings.TrimSpace(d.BusinessRegistrationNumber)) >= minRegistrationLength
}

func hasOnlinePresence(d CompanyData) bool {
	return strings.TrimSpace(d.Website) != "" || strings.TrimSpace(d.LinkedInProfile) != ""
}

func hasDetailedDescription(d CompanyData) bool {
	return utf8.RuneCountInString(strings.TrimSpace(d.Description)) > detailedDescription
}
