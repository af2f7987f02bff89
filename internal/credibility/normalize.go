package credibility

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/payamancoders/trustcheck/internal/domain"
	"github.com/payamancoders/trustcheck/internal/scoring"
)

var (
	// ErrEmptyReply means the backend returned nothing usable.
	ErrEmptyReply = errors.New("credibility: empty reply")
	// ErrNoJSONObject means no balanced {...} block was found in the reply text.
	ErrNoJSONObject = errors.New("credibility: no json object in reply")
	// ErrMissingFields means the verdict lacks a numeric credibilityScore.
	ErrMissingFields = errors.New("credibility: verdict missing required fields")
)

// payloadKeys are the places a structured reply may carry its text, in lookup order.
var payloadKeys = []string{"content", "text", "output", "message", "response"}

// Normalize turns a backend reply into a validated analysis. facts are used for checks the
// verdict does not state. Any error means the caller should fall back to the heuristic.
func Normalize(reply Reply, facts domain.CredibilityChecks) (domain.CredibilityAnalysis, error) {
	obj, err := verdictObject(reply)
	if err != nil {
		return domain.CredibilityAnalysis{}, err
	}
	return fromObject(obj, facts)
}

func verdictObject(reply Reply) (map[string]any, error) {
	switch r := reply.(type) {
	case RawString:
		return decodeObject(string(r))
	case StructuredObject:
		if r == nil {
			return nil, ErrEmptyReply
		}
		if _, ok := r["credibilityScore"]; ok {
			return r, nil
		}
		text, ok := payloadText(r)
		if !ok {
			return nil, fmt.Errorf("structured reply without text payload: %w", ErrEmptyReply)
		}
		return decodeObject(text)
	default:
		return nil, ErrEmptyReply
	}
}

// payloadText finds the completion text in a chat-completion style body.
func payloadText(obj map[string]any) (string, bool) {
	if choices, ok := obj["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if msg, ok := choice["message"].(map[string]any); ok {
				if s, ok := msg["content"].(string); ok && strings.TrimSpace(s) != "" {
					return s, true
				}
			}
			if s, ok := choice["text"].(string); ok && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	for _, key := range payloadKeys {
		switch v := obj[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v, true
			}
		case map[string]any:
			if s, ok := payloadText(v); ok {
				return s, true
			}
		}
	}
	return "", false
}

func decodeObject(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyReply
	}
	block, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(block), &obj); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}
	return obj, nil
}

// ExtractJSONObject returns the first balanced {...} block of text. Braces inside JSON strings
// are ignored, so prose, code fences and nested objects are handled.
func ExtractJSONObject(text string) (string, error) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := matchBrace(text, start); ok {
			return text[start : end+1], nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSONObject
}

func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func fromObject(obj map[string]any, facts domain.CredibilityChecks) (domain.CredibilityAnalysis, error) {
	score, ok := numberValue(obj["credibilityScore"])
	if !ok {
		return domain.CredibilityAnalysis{}, ErrMissingFields
	}

	analysis := domain.CredibilityAnalysis{
		CredibilityScore: clampScore(score),
		CredibilityLevel: parseLevel(obj["credibilityLevel"]),
		Recommendation:   parseRecommendation(obj["recommendation"]),
		Checks:           parseChecks(obj["checks"], facts),
		Reasoning:        strings.TrimSpace(stringValue(obj["reasoning"])),
		Source:           domain.SourceModel,
	}

	detail, _ := obj["analysis"].(map[string]any)
	if detail == nil {
		detail = obj
	}
	analysis.Analysis = domain.AnalysisDetail{
		Strengths:       stringSlice(detail["strengths"]),
		Weaknesses:      stringSlice(detail["weaknesses"]),
		RiskFactors:     stringSlice(detail["riskFactors"]),
		Recommendations: stringSlice(detail["recommendations"]),
	}
	return analysis, nil
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func enumKey(v any) string {
	s := strings.ToLower(strings.TrimSpace(stringValue(v)))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func parseLevel(v any) domain.CredibilityLevel {
	switch level := domain.CredibilityLevel(enumKey(v)); level {
	case domain.CredibilityTrusted, domain.CredibilityConditional, domain.CredibilityNotCredible:
		return level
	}
	return domain.CredibilityNotCredible
}

func parseRecommendation(v any) domain.Recommendation {
	switch rec := domain.Recommendation(enumKey(v)); rec {
	case domain.RecommendAutoApprove, domain.RecommendManualReview, domain.RecommendReject:
		return rec
	}
	return domain.RecommendManualReview
}

func parseChecks(v any, facts domain.CredibilityChecks) domain.CredibilityChecks {
	raw, ok := v.(map[string]any)
	if !ok {
		return facts
	}
	out := facts
	set := func(key string, dst *bool) {
		if b, ok := raw[key].(bool); ok {
			*dst = b
		}
	}
	set("professionalEmail", &out.ProfessionalEmail)
	set("businessRegistration", &out.BusinessRegistration)
	set("onlinePresence", &out.OnlinePresence)
	set("supportingDocuments", &out.SupportingDocuments)
	set("detailedDescription", &out.DetailedDescription)
	set("companyDetails", &out.CompanyDetails)
	return out
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return ""
}

func stringSlice(v any) []string {
	out := []string{}
	switch items := v.(type) {
	case []any:
		for _, item := range items {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		if strings.TrimSpace(items) != "" {
			out = append(out, strings.TrimSpace(items))
		}
	}
	return out
}

// clampScore bounds the float before converting so huge values cannot overflow int.
func clampScore(score float64) int {
	return scoring.Clamp(int(math.Round(math.Max(0, math.Min(100, score)))))
}
