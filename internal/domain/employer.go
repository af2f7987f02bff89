package domain

import "time"

// VerificationStatus is the single gate for employer capabilities such as job posting.
type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusPending    VerificationStatus = "pending"
	StatusVerified   VerificationStatus = "verified"
	StatusRejected   VerificationStatus = "rejected"
	StatusSuspended  VerificationStatus = "suspended"
)

// Valid reports whether s is a known status.
func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusUnverified, StatusPending, StatusVerified, StatusRejected, StatusSuspended:
		return true
	}
	return false
}

// FlagType classifies a concern raised against an employer.
type FlagType string

const (
	FlagDomainMismatch    FlagType = "domain_mismatch"
	FlagPatternMismatch   FlagType = "pattern_mismatch"
	FlagSuspiciousPattern FlagType = "suspicious_pattern"
	FlagUserReport        FlagType = "user_report"
)

// Flag is append-only; it can be marked resolved but never removed.
type Flag struct {
	ID          int64      `json:"id"`
	Type        FlagType   `json:"type"`
	Description string     `json:"description"`
	ReportedBy  *int64     `json:"reportedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Resolved    bool       `json:"resolved"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy  *int64     `json:"resolvedBy,omitempty"`
}

// Document is a supporting file uploaded by the employer.
type Document struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
	Verified   bool      `json:"verified"`
}

// VerificationChecks holds the outcome of the automated checks.
type VerificationChecks struct {
	EmailDomainVerified     bool       `json:"emailDomainVerified"`
	BusinessRegistryChecked bool       `json:"businessRegistryChecked"`
	LinkedInVerified        bool       `json:"linkedInVerified"`
	WebsiteVerified         bool       `json:"websiteVerified"`
	ManualReviewRequired    bool       `json:"manualReviewRequired"`
	LastCheckedAt           *time.Time `json:"lastCheckedAt,omitempty"`
}

// VerificationRecord is embedded in the employer account.
type VerificationRecord struct {
	Status                     VerificationStatus   `json:"status"`
	TrustScore                 int                  `json:"trustScore"`
	CredibilityLevel           CredibilityLevel     `json:"credibilityLevel,omitempty"`
	BusinessRegistrationNumber string               `json:"businessRegistrationNumber,omitempty"`
	LinkedInProfile            string               `json:"linkedInProfile,omitempty"`
	OfficialEmail              string               `json:"officialEmail,omitempty"`
	EmailDomain                string               `json:"emailDomain,omitempty"`
	Checks                     VerificationChecks   `json:"verificationChecks"`
	Flags                      []Flag               `json:"flags"`
	Reports                    int                  `json:"reports"`
	Documents                  []Document           `json:"documents"`
	AIAnalysis                 *CredibilityAnalysis `json:"aiAnalysis,omitempty"`
	VerifiedAt                 *time.Time           `json:"verifiedAt,omitempty"`
	RejectedAt                 *time.Time           `json:"rejectedAt,omitempty"`
	RejectionReason            string               `json:"rejectionReason,omitempty"`
	LastReviewedAt             *time.Time           `json:"lastReviewedAt,omitempty"`
	ReviewedBy                 *int64               `json:"reviewedBy,omitempty"`
	Notes                      string               `json:"notes,omitempty"`
}

// NewVerificationRecord returns the default record of a freshly created account.
func NewVerificationRecord() VerificationRecord {
	return VerificationRecord{
		Status:    StatusUnverified,
		Flags:     []Flag{},
		Documents: []Document{},
	}
}

// Clone returns a deep copy so a transition can be computed without touching the loaded record.
func (r VerificationRecord) Clone() VerificationRecord {
	out := r
	out.Flags = append([]Flag{}, r.Flags...)
	out.Documents = append([]Document{}, r.Documents...)
	if r.AIAnalysis != nil {
		analysis := r.AIAnalysis.Clone()
		out.AIAnalysis = &analysis
	}
	return out
}

// CanPostJobs reports whether the employer may publish job listings.
func (r VerificationRecord) CanPostJobs() bool {
	return r.Status == StatusVerified
}

// OpenFlags counts flags not yet resolved.
func (r VerificationRecord) OpenFlags() int {
	n := 0
	for _, f := range r.Flags {
		if !f.Resolved {
			n++
		}
	}
	return n
}

// Employer is the account aggregate owning a verification record.
type Employer struct {
	ID           int64
	Name         string
	Email        string
	CompanyName  string
	Website      string
	Description  string
	Industry     string
	FoundedYear  int
	Location     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Verification VerificationRecord
	Version      int64
}
