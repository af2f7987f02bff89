package checker

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/payamancoders/trustcheck/internal/domain"
)

const minDescriptionLength = 50

var (
	freeProviders = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "aol.com"}

	suspiciousKeywords = []string{"test", "fake", "demo", "sample", "example"}

	linkedInPattern = regexp.MustCompile(`(?i)^https?://(www\.)?linkedin\.com/(company|in)/.+`)
)

// Finding is a concern produced by a deterministic check.
type Finding struct {
	Type        domain.FlagType
	Description string
}

// IsFreeProvider reports whether the domain is a consumer mailbox provider.
func IsFreeProvider(domainName string) bool {
	d := strings.ToLower(strings.TrimSpace(domainName))
	for _, p := range freeProviders {
		if d == p {
			return true
		}
	}
	return false
}

// LookalikeProvider returns the free provider the domain is one edit away from, e.g. gmai1.com.
func LookalikeProvider(domainName string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(domainName))
	if d == "" || IsFreeProvider(d) {
		return "", false
	}
	for _, p := range freeProviders {
		if fuzzy.LevenshteinDistance(d, p) <= 1 {
			return p, true
		}
	}
	return "", false
}

// VerifyDomainMatch compares the email domain with the website host, ignoring a leading www.
func VerifyDomainMatch(email, website string) bool {
	emailDomain := EmailDomain(email)
	host := WebsiteHost(website)
	if emailDomain == "" || host == "" {
		return false
	}
	return strings.EqualFold(emailDomain, host)
}

// WebsiteHost extracts the hostname of a website, tolerating a missing scheme.
// It returns "" for malformed input.
func WebsiteHost(website string) string {
	raw := strings.TrimSpace(website)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// ValidateLinkedInProfile accepts company and personal LinkedIn profile URLs.
func ValidateLinkedInProfile(profileURL string) bool {
	return linkedInPattern.MatchString(strings.TrimSpace(profileURL))
}

// DetectSuspiciousPatterns flags placeholder company names, thin descriptions and a missing website.
// Each condition is independent.
func DetectSuspiciousPatterns(companyName, website, description string) []Finding {
	var findings []Finding

	name := strings.ToLower(companyName)
	for _, keyword := range suspiciousKeywords {
		if strings.Contains(name, keyword) {
			findings = append(findings, Finding{
				Type:        domain.FlagSuspiciousPattern,
				Description: fmt.Sprintf("Company name contains suspicious keyword %q", keyword),
			})
			break
		}
	}

	if utf8.RuneCountInString(strings.TrimSpace(description)) < minDescriptionLength {
		findings = append(findings, Finding{
			Type:        domain.FlagSuspiciousPattern,
			Description: "Company description is too short",
		})
	}

	if strings.TrimSpace(website) == "" {
		findings = append(findings, Finding{
			Type:        domain.FlagSuspiciousPattern,
			Description: "No company website provided",
		})
	}

	return findings
}
