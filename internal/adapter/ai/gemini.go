package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/payamancoders/trustcheck/internal/credibility"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiCompleter calls the Gemini API through the genai SDK.
type GeminiCompleter struct {
	apiKey string
	model  string

	once      sync.Once
	client    *genai.Client
	clientErr error
}

var _ credibility.Completer = (*GeminiCompleter)(nil)

// NewGeminiCompleter constructs a completer. The SDK client is created on first use.
func NewGeminiCompleter(apiKey, model string) *GeminiCompleter {
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiModel
	}
	return &GeminiCompleter{apiKey: apiKey, model: model}
}

func (g *GeminiCompleter) sdk(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.clientErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return g.client, g.clientErr
}

var errNoUserContent = errors.New("gemini: no user content")

// Complete sends system messages as the system instruction and the rest as conversation turns.
func (g *GeminiCompleter) Complete(ctx context.Context, msgs []credibility.Message) (credibility.Reply, error) {
	contents, config, err := geminiRequest(msgs)
	if err != nil {
		return nil, err
	}

	client, err := g.sdk(ctx)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	return credibility.RawString(result.Text()), nil
}

// geminiRequest maps chat messages onto genai contents. Assistant turns become model turns.
func geminiRequest(msgs []credibility.Message) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	var system []string
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case credibility.RoleSystem:
			system = append(system, m.Content)
		case credibility.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return nil, nil, errNoUserContent
	}

	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	return contents, config, nil
}
