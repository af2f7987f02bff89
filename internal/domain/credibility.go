package domain

// CredibilityLevel is the categorical verdict of the credibility analysis.
type CredibilityLevel string

const (
	CredibilityTrusted     CredibilityLevel = "trusted"
	CredibilityConditional CredibilityLevel = "conditional"
	CredibilityNotCredible CredibilityLevel = "not_credible"
)

// Recommendation is the suggested next action for an employer.
type Recommendation string

const (
	RecommendAutoApprove  Recommendation = "auto_approve"
	RecommendManualReview Recommendation = "manual_review"
	RecommendReject       Recommendation = "reject"
)

// AnalysisSource tells whether a verdict came from the model or the heuristic.
type AnalysisSource string

const (
	SourceModel     AnalysisSource = "model"
	SourceHeuristic AnalysisSource = "heuristic"
)

// AnalysisDetail lists the qualitative findings behind a credibility score.
type AnalysisDetail struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	RiskFactors     []string `json:"riskFactors"`
	Recommendations []string `json:"recommendations"`
}

// CredibilityChecks are the facts the analysis considered.
type CredibilityChecks struct {
	ProfessionalEmail    bool `json:"professionalEmail"`
	BusinessRegistration bool `json:"businessRegistration"`
	OnlinePresence       bool `json:"onlinePresence"`
	SupportingDocuments  bool `json:"supportingDocuments"`
	DetailedDescription  bool `json:"detailedDescription"`
	CompanyDetails       bool `json:"companyDetails"`
}

// CredibilityAnalysis is the normalised verdict stored on the verification record.
type CredibilityAnalysis struct {
	CredibilityScore int               `json:"credibilityScore"`
	CredibilityLevel CredibilityLevel  `json:"credibilityLevel"`
	Recommendation   Recommendation    `json:"recommendation"`
	Analysis         AnalysisDetail    `json:"analysis"`
	Checks           CredibilityChecks `json:"checks"`
	Reasoning        string            `json:"reasoning"`
	Source           AnalysisSource    `json:"source"`
}

// Clone deep-copies the slices of the analysis.
func (a CredibilityAnalysis) Clone() CredibilityAnalysis {
	out := a
	out.Analysis = AnalysisDetail{
		Strengths:       append([]string{}, a.Analysis.Strengths...),
		Weaknesses:      append([]string{}, a.Analysis.Weaknesses...),
		RiskFactors:     append([]string{}, a.Analysis.RiskFactors...),
		Recommendations: append([]string{}, a.Analysis.Recommendations...),
	}
	return out
}
