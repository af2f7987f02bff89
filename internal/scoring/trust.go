// Package scoring computes the deterministic employer trust score.
package scoring

const (
	flagPenalty    = 5
	maxFlagPenalty = 25
	minScore       = 0
	maxScore       = 100
)

// Check is one weighted signal of the trust score.
type Check struct {
	Name        string // unique identifier
	Description string // human-readable summary
	Impact      int    // points added when the check passes
}

// TrustChecks are the fixed weights. They sum to 100.
var TrustChecks = []Check{
	{Name: "emailDomainVerified", Description: "Official email domain has MX records and is not a free provider", Impact: 25},
	{Name: "businessRegistryChecked", Description: "Business registration number supplied", Impact: 20},
	{Name: "linkedInVerified", Description: "LinkedIn company or profile URL is well formed", Impact: 15},
	{Name: "websiteVerified", Description: "Website host matches the email domain", Impact: 15},
	{Name: "hasDocuments", Description: "At least one supporting document uploaded", Impact: 15},
	{Name: "domainMatch", Description: "Email domain and website agree", Impact: 10},
}

// Inputs are the facts the score is computed from.
type Inputs struct {
	EmailDomainVerified     bool
	BusinessRegistryChecked bool
	LinkedInVerified        bool
	WebsiteVerified         bool
	HasDocuments            bool
	DomainMatch             bool
	FlagCount               int
}

func (in Inputs) passed(name string) bool {
	switch name {
	case "emailDomainVerified":
		return in.EmailDomainVerified
	case "businessRegistryChecked":
		return in.BusinessRegistryChecked
	case "linkedInVerified":
		return in.LinkedInVerified
	case "websiteVerified":
		return in.WebsiteVerified
	case "hasDocuments":
		return in.HasDocuments
	case "domainMatch":
		return in.DomainMatch
	}
	return false
}

// CalculateTrustScore returns a score in [0,100]. The flag penalty saturates at 25.
func CalculateTrustScore(in Inputs) int {
	score := 0
	for _, c := range TrustChecks {
		if in.passed(c.Name) {
			score += c.Impact
		}
	}
	score -= FlagPenalty(in.FlagCount)
	return Clamp(score)
}

// FlagPenalty is five points per flag, capped at 25.
func FlagPenalty(flagCount int) int {
	if flagCount <= 0 {
		return 0
	}
	if flagCount >= maxFlagPenalty/flagPenalty {
		return maxFlagPenalty
	}
	return flagCount * flagPenalty
}

// Clamp bounds a score to [0,100].
func Clamp(score int) int {
	return max(minScore, min(score, maxScore))
}
