// Package ai holds the text-completion backends used for credibility analysis.
package ai

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/payamancoders/trustcheck/internal/config"
	"github.com/payamancoders/trustcheck/internal/credibility"
)

// NewCompleter selects the backend named by the configuration. It returns nil when no
// backend is usable, which makes the analyzer use its heuristic.
func NewCompleter(cfg config.AIConfig, client *http.Client, logger *zap.Logger) credibility.Completer {
	if logger == nil {
		logger = zap.L()
	}
	switch cfg.Provider {
	case config.AIProviderGemini:
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY not set, credibility analysis uses heuristic only")
			return nil
		}
		return NewGeminiCompleter(cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.AIProviderOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			logger.Warn("OPENROUTER_API_KEY not set, credibility analysis uses heuristic only")
			return nil
		}
		return NewOpenRouterCompleter(client, cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
	default:
		return nil
	}
}
