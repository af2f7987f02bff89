package credibility

import (
	"fmt"
	"strings"

	"github.com/payamancoders/trustcheck/internal/checker"
)

const systemPrompt = `You are a trust and safety analyst for a career platform. You assess whether an employer account belongs to a legitimate company.
Respond with a single JSON object and nothing else, using exactly these fields:
{"credibilityScore": <integer 0-100>,
 "credibilityLevel": "trusted" | "conditional" | "not_credible",
 "recommendation": "auto_approve" | "manual_review" | "reject",
 "analysis": {"strengths": [string], "weaknesses": [string], "riskFactors": [string], "recommendations": [string]},
 "checks": {"professionalEmail": bool, "businessRegistration": bool, "onlinePresence": bool, "supportingDocuments": bool, "detailedDescription": bool, "companyDetails": bool},
 "reasoning": string}`

const scoringGuide = `Scoring bands:
- 80-100: trusted, recommend auto_approve
- 60-79: conditional, recommend manual_review
- 0-59: not_credible; recommend reject when the score is below 40, otherwise manual_review`

// BuildMessages renders the role-tagged prompt for a company.
func BuildMessages(data CompanyData) []Message {
	var b strings.Builder
	b.WriteString("Assess the credibility of this employer.\n\n")

	field := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			value = "not provided"
		}
		fmt.Fprintf(&b, "- %s: %s\n", label, value)
	}
	field("Company name", data.CompanyName)
	field("Contact email", data.Email)
	field("Website", data.Website)
	field("LinkedIn", data.LinkedInProfile)
	field("Business registration number", data.BusinessRegistrationNumber)
	field("Industry", data.Industry)
	if data.FoundedYear > 0 {
		field("Founded", fmt.Sprintf("%d", data.FoundedYear))
	} else {
		field("Founded", "")
	}
	field("Location", data.Location)
	field("Description", data.Description)
	fmt.Fprintf(&b, "- Supporting documents uploaded: %d\n", data.DocumentCount)
	fmt.Fprintf(&b, "- Email domain has mail servers: %t\n", data.EmailDomainVerified)

	emailDomain := checker.EmailDomain(data.Email)
	if checker.IsFreeProvider(emailDomain) {
		fmt.Fprintf(&b, "- Note: %s is a free email provider\n", emailDomain)
	} else if provider, ok := checker.LookalikeProvider(emailDomain); ok {
		fmt.Fprintf(&b, "- Note: %s closely resembles the free provider %s\n", emailDomain, provider)
	}
	if len(data.SuspiciousFindings) > 0 {
		b.WriteString("- Automated checks raised:\n")
		for _, f := range data.SuspiciousFindings {
			fmt.Fprintf(&b, "  * %s\n", f)
		}
	}

	b.WriteString("\n")
	b.WriteString(scoringGuide)

	return []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: b.String()},
	}
}
