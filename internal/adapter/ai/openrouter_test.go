package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/payamancoders/trustcheck/internal/adapter/ai"
	"github.com/payamancoders/trustcheck/internal/config"
	"github.com/payamancoders/trustcheck/internal/credibility"
	"github.com/payamancoders/trustcheck/internal/domain"
)

const chatURL = "https://router.test/api/v1/chat/completions"

func newMockedClient(t *testing.T) *http.Client {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestOpenRouterComplete(t *testing.T) {
	client := newMockedClient(t)

	var captured map[string]any
	httpmock.RegisterResponder(http.MethodPost, chatURL, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "Bearer or-key", req.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&captured))
		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
			"id": "gen-42",
			"choices": []any{
				map[string]any{"message": map[string]any{
					"role":    "assistant",
					"content": "```json\n{\"credibilityScore\": 74, \"credibilityLevel\": \"conditional\", \"recommendation\": \"manual_review\"}\n```",
				}},
			},
		})
	})

	completer := ai.NewOpenRouterCompleter(client, "https://router.test/api/v1/", "or-key", "some/model")
	reply, err := completer.Complete(context.Background(), []credibility.Message{
		{Role: credibility.RoleSystem, Content: "be strict"},
		{Role: credibility.RoleUser, Content: "assess Acme"},
	})
	require.NoError(t, err)
	require.IsType(t, credibility.StructuredObject{}, reply)
	require.Equal(t, 1, httpmock.GetTotalCallCount())

	require.Equal(t, "some/model", captured["model"])
	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 2)
	require.Equal(t, "system", msgs[0].(map[string]any)["role"])

	analysis, err := credibility.Normalize(reply, domain.CredibilityChecks{})
	require.NoError(t, err)
	require.Equal(t, 74, analysis.CredibilityScore)
}

func TestOpenRouterErrorStatus(t *testing.T) {
	client := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, chatURL, httpmock.NewStringResponder(http.StatusTooManyRequests, `{"error":"rate limited"}`))

	completer := ai.NewOpenRouterCompleter(client, "https://router.test/api/v1", "or-key", "")
	_, err := completer.Complete(context.Background(), []credibility.Message{{Role: credibility.RoleUser, Content: "x"}})
	require.ErrorContains(t, err, "status=429")
}

func TestOpenRouterPlainTextBody(t *testing.T) {
	client := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodPost, chatURL, httpmock.NewStringResponder(http.StatusOK, `Verdict: {"credibilityScore": 35}`))

	completer := ai.NewOpenRouterCompleter(client, "https://router.test/api/v1", "", "")
	reply, err := completer.Complete(context.Background(), []credibility.Message{{Role: credibility.RoleUser, Content: "x"}})
	require.NoError(t, err)
	require.Equal(t, credibility.RawString(`Verdict: {"credibilityScore": 35}`), reply)
}

func TestNewCompleterSelection(t *testing.T) {
	logger := zap.NewNop()

	require.Nil(t, ai.NewCompleter(config.AIConfig{Provider: config.AIProviderNone}, nil, logger))
	require.Nil(t, ai.NewCompleter(config.AIConfig{Provider: config.AIProviderGemini}, nil, logger))
	require.Nil(t, ai.NewCompleter(config.AIConfig{Provider: config.AIProviderOpenRouter}, nil, logger))

	require.IsType(t, &ai.GeminiCompleter{}, ai.NewCompleter(config.AIConfig{Provider: config.AIProviderGemini, GeminiAPIKey: "k"}, nil, logger))
	require.IsType(t, &ai.OpenRouterCompleter{}, ai.NewCompleter(config.AIConfig{Provider: config.AIProviderOpenRouter, OpenRouterAPIKey: "k"}, nil, logger))
}
