package credibility_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/payamancoders/trustcheck/internal/credibility"
	"github.com/payamancoders/trustcheck/internal/domain"
)

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"raw", `{"a":1}`, `{"a":1}`},
		{"prose", `Sure! Here is my verdict: {"a":1} Hope this helps.`, `{"a":1}`},
		{"fenced", "```json\n{\"a\": {\"b\": 2}}\n```", `{"a": {"b": 2}}`},
		{"braces in strings", `{"reasoning":"uses } and { freely","x":"\"}"}`, `{"reasoning":"uses } and { freely","x":"\"}"}`},
		{"unbalanced first", `{ oops { "a": 1 }`, `{ "a": 1 }`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := credibility.ExtractJSONObject(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err := credibility.ExtractJSONObject("no json here")
	require.ErrorIs(t, err, credibility.ErrNoJSONObject)
	_, err = credibility.ExtractJSONObject(`{"never": "closed"`)
	require.ErrorIs(t, err, credibility.ErrNoJSONObject)
}

func TestNormalizeRawString(t *testing.T) {
	reply := credibility.RawString("Analysis follows.\n```json\n" + `{
		"credibilityScore": 87.6,
		"credibilityLevel": "Trusted",
		"recommendation": "auto-approve",
		"analysis": {"strengths": ["Registered company", 42, ""], "weaknesses": [], "riskFactors": "Young company"},
		"checks": {"professionalEmail": true, "supportingDocuments": false},
		"reasoning": " Looks legitimate. "
	}` + "\n```")

	facts := domain.CredibilityChecks{SupportingDocuments: true, OnlinePresence: true}
	got, err := credibility.Normalize(reply, facts)
	require.NoError(t, err)
	require.Equal(t, 88, got.CredibilityScore)
	require.Equal(t, domain.CredibilityTrusted, got.CredibilityLevel)
	require.Equal(t, domain.RecommendAutoApprove, got.Recommendation)
	require.Equal(t, []string{"Registered company"}, got.Analysis.Strengths)
	require.Equal(t, []string{}, got.Analysis.Weaknesses)
	require.Equal(t, []string{"Young company"}, got.Analysis.RiskFactors)
	require.Equal(t, []string{}, got.Analysis.Recommendations)
	require.True(t, got.Checks.ProfessionalEmail)
	require.False(t, got.Checks.SupportingDocuments)
	require.True(t, got.Checks.OnlinePresence)
	require.Equal(t, "Looks legitimate.", got.Reasoning)
	require.Equal(t, domain.SourceModel, got.Source)
}

func TestNormalizeClampsAndDefaults(t *testing.T) {
	got, err := credibility.Normalize(credibility.RawString(`{"credibilityScore": 240, "credibilityLevel": "excellent", "recommendation": 7}`), domain.CredibilityChecks{})
	require.NoError(t, err)
	require.Equal(t, 100, got.CredibilityScore)
	require.Equal(t, domain.CredibilityNotCredible, got.CredibilityLevel)
	require.Equal(t, domain.RecommendManualReview, got.Recommendation)
	require.NotNil(t, got.Analysis.Strengths)

	got, err = credibility.Normalize(credibility.RawString(`{"credibilityScore": "-12"}`), domain.CredibilityChecks{})
	require.NoError(t, err)
	require.Equal(t, 0, got.CredibilityScore)

	for raw, want := range map[string]int{
		`{"credibilityScore": 1e20}`:   100,
		`{"credibilityScore": 1e308}`:  100,
		`{"credibilityScore": -1e20}`:  0,
		`{"credibilityScore": "9e18"}`: 100,
		`{"credibilityScore": 99.6}`:   100,
		`{"credibilityScore": 0.4}`:    0,
	} {
		got, err := credibility.Normalize(credibility.RawString(raw), domain.CredibilityChecks{})
		require.NoError(t, err, raw)
		require.Equal(t, want, got.CredibilityScore, raw)
	}
}

func TestNormalizeStructuredObject(t *testing.T) {
	chat := credibility.StructuredObject{
		"id": "gen-1",
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": `{"credibilityScore": 65, "credibilityLevel": "conditional", "recommendation": "manual_review"}`}},
		},
	}
	got, err := credibility.Normalize(chat, domain.CredibilityChecks{})
	require.NoError(t, err)
	require.Equal(t, 65, got.CredibilityScore)
	require.Equal(t, domain.CredibilityConditional, got.CredibilityLevel)

	direct := credibility.StructuredObject{"credibilityScore": float64(30), "recommendation": "reject"}
	got, err = credibility.Normalize(direct, domain.CredibilityChecks{})
	require.NoError(t, err)
	require.Equal(t, 30, got.CredibilityScore)
	require.Equal(t, domain.RecommendReject, got.Recommendation)

	wrapped := credibility.StructuredObject{"output": map[string]any{"text": `{"credibilityScore": 50}`}}
	got, err = credibility.Normalize(wrapped, domain.CredibilityChecks{})
	require.NoError(t, err)
	require.Equal(t, 50, got.CredibilityScore)
}

func TestNormalizeFailures(t *testing.T) {
	cases := []struct {
		name  string
		reply credibility.Reply
		want  error
	}{
		{"nil reply", nil, credibility.ErrEmptyReply},
		{"empty string", credibility.RawString("   "), credibility.ErrEmptyReply},
		{"prose only", credibility.RawString("I cannot help with that."), credibility.ErrNoJSONObject},
		{"missing score", credibility.RawString(`{"credibilityLevel": "trusted"}`), credibility.ErrMissingFields},
		{"non numeric score", credibility.RawString(`{"credibilityScore": "high"}`), credibility.ErrMissingFields},
		{"structured without payload", credibility.StructuredObject{"id": "x"}, credibility.ErrEmptyReply},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := credibility.Normalize(tc.reply, domain.CredibilityChecks{})
			require.ErrorIs(t, err, tc.want)
		})
	}

	_, err := credibility.Normalize(credibility.RawString(`{"credibilityScore": 10,}`), domain.CredibilityChecks{})
	require.Error(t, err)
}
